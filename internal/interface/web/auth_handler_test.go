package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mejova/bloggy/internal/application"
	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
	"github.com/mejova/bloggy/internal/session"
	"github.com/mejova/bloggy/pkg/helpers"
	"github.com/mejova/bloggy/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users map[string]*entity.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("u%d", len(f.users)+1)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]entity.User, error) { return nil, nil }

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeSessionBackend keeps sessions and flashes in memory.
type fakeSessionBackend struct {
	seq      int
	sessions map[string]string
	flashes  map[string][]session.Flash
}

func newFakeSessionBackend() *fakeSessionBackend {
	return &fakeSessionBackend{
		sessions: make(map[string]string),
		flashes:  make(map[string][]session.Flash),
	}
}

func (b *fakeSessionBackend) Create(_ context.Context, userID string) (string, error) {
	b.seq++
	sid := fmt.Sprintf("sid-%d", b.seq)
	b.sessions[sid] = userID
	return sid, nil
}

func (b *fakeSessionBackend) Resolve(_ context.Context, sid string) (string, bool, error) {
	userID, ok := b.sessions[sid]
	return userID, ok, nil
}

func (b *fakeSessionBackend) Destroy(_ context.Context, sid string) error {
	delete(b.sessions, sid)
	delete(b.flashes, sid)
	return nil
}

func (b *fakeSessionBackend) Token(_ context.Context, sid string) (string, error) {
	return "tok-" + sid, nil
}

func (b *fakeSessionBackend) PushFlash(_ context.Context, sid string, f session.Flash) error {
	b.flashes[sid] = append(b.flashes[sid], f)
	return nil
}

func (b *fakeSessionBackend) PopFlashes(_ context.Context, sid string) ([]session.Flash, error) {
	out := b.flashes[sid]
	delete(b.flashes, sid)
	return out, nil
}

// lastFlash returns the most recently queued flash across all sessions.
func (b *fakeSessionBackend) lastFlash(t *testing.T) session.Flash {
	t.Helper()
	sid := fmt.Sprintf("sid-%d", b.seq)
	queue := b.flashes[sid]
	require.NotEmpty(t, queue, "expected a flash in session %s", sid)
	return queue[len(queue)-1]
}

type authFixture struct {
	router  *gin.Engine
	backend *fakeSessionBackend
	users   *fakeUserRepo
}

func newAuthFixture() *authFixture {
	backend := newFakeSessionBackend()
	users := newFakeUserRepo()
	sessions := session.NewManagerWith(backend, testLogger(), "", false, 0)
	svc := application.NewUserService(users, testLogger())
	h := NewAuthHandler(svc, sessions, testLogger())

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	return &authFixture{router: r, backend: backend, users: users}
}

func (fx *authFixture) postForm(path string, values url.Values, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func (fx *authFixture) get(path, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func TestRegisterFlow(t *testing.T) {
	t.Parallel()

	t.Run("success redirects to login", func(t *testing.T) {
		fx := newAuthFixture()
		w := fx.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret1"}}, "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, "Registration successful! You can now log in.", fx.backend.lastFlash(t).Text)

		u, err := fx.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", u.PasswordHash, "password is never stored raw")
	})

	t.Run("duplicate username", func(t *testing.T) {
		fx := newAuthFixture()
		fx.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret1"}}, "")
		w := fx.postForm("/register", url.Values{"username": {"alice"}, "password": {"secret2"}}, "")

		assert.Equal(t, "/register", w.Header().Get("Location"))
		assert.Equal(t, "Username already exists.", fx.backend.lastFlash(t).Text)
		assert.Len(t, fx.users.users, 1)
	})

	t.Run("short password never reaches the store", func(t *testing.T) {
		fx := newAuthFixture()
		w := fx.postForm("/register", url.Values{"username": {"alice"}, "password": {"short"}}, "")

		assert.Equal(t, "/register", w.Header().Get("Location"))
		assert.Equal(t, "password must be at least 6 characters long", fx.backend.lastFlash(t).Text)
		assert.Empty(t, fx.users.users)
	})
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()

	seedUser := func(fx *authFixture, username, password string) *entity.User {
		hash, err := helpers.HashPassword(password)
		require.NoError(t, err)
		u := &entity.User{Username: username, PasswordHash: hash}
		require.NoError(t, fx.users.Create(context.Background(), u))
		return u
	}

	t.Run("valid credentials bind a session", func(t *testing.T) {
		fx := newAuthFixture()
		u := seedUser(fx, "alice", "secret1")

		w := fx.postForm("/login", url.Values{"username": {"alice"}, "password": {"secret1"}}, "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "Welcome back!", fx.backend.lastFlash(t).Text)

		found := false
		for _, userID := range fx.backend.sessions {
			if userID == u.ID {
				found = true
			}
		}
		assert.True(t, found, "a session bound to the user must exist")
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		fx := newAuthFixture()
		seedUser(fx, "alice", "secret1")

		for _, form := range []url.Values{
			{"username": {"alice"}, "password": {"wrong-1"}},
			{"username": {"nobody"}, "password": {"secret1"}},
		} {
			w := fx.postForm("/login", form, "")
			assert.Equal(t, "/login", w.Header().Get("Location"))
			assert.Equal(t, "Invalid username or password.", fx.backend.lastFlash(t).Text)
		}
	})

	t.Run("login rotates an existing anonymous session", func(t *testing.T) {
		fx := newAuthFixture()
		u := seedUser(fx, "alice", "secret1")
		anon, err := fx.backend.Create(context.Background(), "")
		require.NoError(t, err)

		fx.postForm("/login", url.Values{"username": {"alice"}, "password": {"secret1"}}, anon)

		_, stillThere := fx.backend.sessions[anon]
		assert.False(t, stillThere, "anonymous session is destroyed on login")
		assert.Equal(t, u.ID, fx.backend.sessions[fmt.Sprintf("sid-%d", fx.backend.seq)])
	})
}

func TestLogoutFlow(t *testing.T) {
	t.Parallel()
	fx := newAuthFixture()
	bound, err := fx.backend.Create(context.Background(), "u1")
	require.NoError(t, err)

	w := fx.get("/logout", bound)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	_, stillThere := fx.backend.sessions[bound]
	assert.False(t, stillThere)
	assert.Equal(t, "Logged out successfully.", fx.backend.lastFlash(t).Text)
}
