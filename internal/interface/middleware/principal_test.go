package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
)

// fakeSource is a canned PrincipalSource.
type fakeSource struct {
	userID      string
	ok          bool
	invalidated bool
}

func (f *fakeSource) ResolveUser(_ *gin.Context) (string, bool) { return f.userID, f.ok }
func (f *fakeSource) Invalidate(_ *gin.Context)                 { f.invalidated = true }

// fakeUserStore serves a single user, or a forced error.
type fakeUserStore struct {
	user *entity.User
	err  error
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.ID != id {
		return nil, repository.ErrNotFound
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUserStore) Create(context.Context, *entity.User) error { return nil }
func (f *fakeUserStore) GetByUsername(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserStore) List(context.Context) ([]entity.User, error) { return nil, nil }
func (f *fakeUserStore) Delete(context.Context, string) error        { return nil }

var _ repository.UserRepository = (*fakeUserStore)(nil)

func runPrincipal(t *testing.T, src *fakeSource, users *fakeUserStore) *entity.User {
	t.Helper()
	var resolved *entity.User
	r := gin.New()
	r.GET("/", Principal(src, users, testLogger()), func(c *gin.Context) {
		resolved, _ = PrincipalFrom(c)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code, "principal resolution never blocks the request")
	return resolved
}

func TestPrincipal(t *testing.T) {
	t.Parallel()

	t.Run("no session stays anonymous", func(t *testing.T) {
		src := &fakeSource{}
		resolved := runPrincipal(t, src, &fakeUserStore{})

		assert.Nil(t, resolved)
		assert.False(t, src.invalidated)
	})

	t.Run("bound session resolves the user", func(t *testing.T) {
		u := &entity.User{ID: "u1", Username: "alice"}
		src := &fakeSource{userID: "u1", ok: true}
		resolved := runPrincipal(t, src, &fakeUserStore{user: u})

		require.NotNil(t, resolved)
		assert.Equal(t, "alice", resolved.Username)
		assert.False(t, src.invalidated)
	})

	t.Run("session bound to a deleted user is destroyed", func(t *testing.T) {
		src := &fakeSource{userID: "gone", ok: true}
		resolved := runPrincipal(t, src, &fakeUserStore{})

		assert.Nil(t, resolved)
		assert.True(t, src.invalidated)
	})

	t.Run("store error keeps the session and stays anonymous", func(t *testing.T) {
		src := &fakeSource{userID: "u1", ok: true}
		resolved := runPrincipal(t, src, &fakeUserStore{err: errors.New("connection refused")})

		assert.Nil(t, resolved)
		assert.False(t, src.invalidated, "transient store errors must not log anyone out")
	})
}
