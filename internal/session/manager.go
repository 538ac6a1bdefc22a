package session

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// sid is cached in the gin context because a rotated session cookie is not
// visible in the request headers within the same request.
const ctxSIDKey = "sessionSID"

// Backend is what Manager needs from the session store.
type Backend interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, sid string) (string, bool, error)
	Destroy(ctx context.Context, sid string) error
	Token(ctx context.Context, sid string) (string, error)
	PushFlash(ctx context.Context, sid string, f Flash) error
	PopFlashes(ctx context.Context, sid string) ([]Flash, error)
}

// Manager ties the Store to the session cookie and exposes the flash queue
// to handlers and middleware.
type Manager struct {
	store        Backend
	logger       *logrus.Logger
	cookieDomain string
	cookieSecure bool
	ttl          time.Duration
}

func NewManager(rdb *redis.Client, logger *logrus.Logger, cookieDomain string, cookieSecure bool, ttl time.Duration) *Manager {
	return NewManagerWith(NewStore(rdb, ttl), logger, cookieDomain, cookieSecure, ttl)
}

// NewManagerWith wires an explicit backend; tests use it to swap Redis out.
func NewManagerWith(b Backend, logger *logrus.Logger, cookieDomain string, cookieSecure bool, ttl time.Duration) *Manager {
	return &Manager{
		store:        b,
		logger:       logger,
		cookieDomain: cookieDomain,
		cookieSecure: cookieSecure,
		ttl:          ttl,
	}
}

func (m *Manager) currentSID(c *gin.Context) string {
	if v, ok := c.Get(ctxSIDKey); ok {
		sid, _ := v.(string)
		return sid
	}
	sid, err := c.Cookie(CookieName)
	if err != nil {
		sid = ""
	}
	c.Set(ctxSIDKey, sid)
	return sid
}

func (m *Manager) setSID(c *gin.Context, sid string) {
	c.Set(ctxSIDKey, sid)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, sid, int(m.ttl.Seconds()), "/", m.cookieDomain, m.cookieSecure, true)
}

func (m *Manager) clearSID(c *gin.Context) {
	c.Set(ctxSIDKey, "")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", m.cookieDomain, m.cookieSecure, true)
}

// ensure returns the current session id, lazily creating an anonymous
// session when the visitor has none yet. Returns "" if the store is down.
func (m *Manager) ensure(c *gin.Context) string {
	if sid := m.currentSID(c); sid != "" {
		return sid
	}
	sid, err := m.store.Create(c.Request.Context(), "")
	if err != nil {
		m.logger.WithError(err).Warn("session create failed")
		return ""
	}
	m.setSID(c, sid)
	return sid
}

// ResolveUser returns the user id bound to the request's session, if any.
func (m *Manager) ResolveUser(c *gin.Context) (string, bool) {
	sid := m.currentSID(c)
	if sid == "" {
		return "", false
	}
	userID, found, err := m.store.Resolve(c.Request.Context(), sid)
	if err != nil {
		m.logger.WithError(err).Warn("session resolve failed")
		return "", false
	}
	if !found || userID == "" {
		return "", false
	}
	return userID, true
}

// Invalidate destroys the request's session and clears the cookie. Used when
// the session references a user that no longer exists.
func (m *Manager) Invalidate(c *gin.Context) {
	if sid := m.currentSID(c); sid != "" {
		if err := m.store.Destroy(c.Request.Context(), sid); err != nil {
			m.logger.WithError(err).Warn("session destroy failed")
		}
	}
	m.clearSID(c)
}

// Login rotates the session: a fresh id is bound to the user and the old
// session, if any, is destroyed.
func (m *Manager) Login(c *gin.Context, userID string) error {
	old := m.currentSID(c)
	sid, err := m.store.Create(c.Request.Context(), userID)
	if err != nil {
		return err
	}
	if old != "" {
		if derr := m.store.Destroy(c.Request.Context(), old); derr != nil {
			m.logger.WithError(derr).Warn("stale session destroy failed")
		}
	}
	m.setSID(c, sid)
	return nil
}

// Logout destroys the session unconditionally. Store errors are logged and
// swallowed; a fresh anonymous session is issued so a goodbye flash can
// still be shown. Logout never fails visibly.
func (m *Manager) Logout(c *gin.Context) {
	if sid := m.currentSID(c); sid != "" {
		if err := m.store.Destroy(c.Request.Context(), sid); err != nil {
			m.logger.WithError(err).Warn("logout session destroy failed")
		}
	}
	fresh, err := m.store.Create(c.Request.Context(), "")
	if err != nil {
		m.logger.WithError(err).Warn("post-logout session create failed")
		m.clearSID(c)
		return
	}
	m.setSID(c, fresh)
}

// CSRFToken returns the token bound to the request's session, creating an
// anonymous session first when the visitor has none. Empty when the store
// is down; the form then fails the check and the visitor retries.
func (m *Manager) CSRFToken(c *gin.Context) string {
	sid := m.ensure(c)
	if sid == "" {
		return ""
	}
	tok, err := m.store.Token(c.Request.Context(), sid)
	if err != nil {
		m.logger.WithError(err).Warn("csrf token fetch failed")
		return ""
	}
	return tok
}

// CheckCSRF reports whether token matches the session's token.
func (m *Manager) CheckCSRF(c *gin.Context, token string) bool {
	if token == "" {
		return false
	}
	sid := m.currentSID(c)
	if sid == "" {
		return false
	}
	want, err := m.store.Token(c.Request.Context(), sid)
	if err != nil || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// Success enqueues a success flash for the next rendered view.
func (m *Manager) Success(c *gin.Context, text string) {
	m.push(c, Flash{Kind: KindSuccess, Text: text})
}

// Error enqueues an error flash for the next rendered view.
func (m *Manager) Error(c *gin.Context, text string) {
	m.push(c, Flash{Kind: KindError, Text: text})
}

func (m *Manager) push(c *gin.Context, f Flash) {
	sid := m.ensure(c)
	if sid == "" {
		return
	}
	if err := m.store.PushFlash(c.Request.Context(), sid, f); err != nil {
		m.logger.WithError(err).Warn("flash push failed")
	}
}

// Consume drains and returns the pending flashes for this session.
func (m *Manager) Consume(c *gin.Context) []Flash {
	sid := m.currentSID(c)
	if sid == "" {
		return nil
	}
	flashes, err := m.store.PopFlashes(c.Request.Context(), sid)
	if err != nil {
		m.logger.WithError(err).Warn("flash consume failed")
		return nil
	}
	return flashes
}
