package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
)

const ctxPrincipalKey = "principal"

// PrincipalSource resolves the request's session to a user id.
// Implemented by session.Manager.
type PrincipalSource interface {
	ResolveUser(c *gin.Context) (userID string, ok bool)
	Invalidate(c *gin.Context)
}

// Principal resolves the session cookie into a user and attaches it to the
// request context. A session bound to a user that no longer exists is
// destroyed, forcing a fresh login instead of continuing with a stale
// reference. The request always proceeds; protected routes enforce
// authentication separately.
func Principal(sessions PrincipalSource, users repository.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessions.ResolveUser(c)
		if !ok {
			c.Next()
			return
		}
		u, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				sessions.Invalidate(c)
			} else {
				logger.WithError(err).WithField("user_id", userID).Error("principal lookup failed")
			}
			c.Next()
			return
		}
		SetPrincipal(c, u)
		c.Next()
	}
}

// SetPrincipal attaches the resolved user to the gin context.
func SetPrincipal(c *gin.Context, u *entity.User) {
	c.Set(ctxPrincipalKey, u)
}

// PrincipalFrom returns the resolved user for this request, if any.
func PrincipalFrom(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	if !ok || u == nil {
		return nil, false
	}
	return u, true
}
