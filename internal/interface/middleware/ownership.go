package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/domain/entity"
	"github.com/mejova/bloggy/internal/domain/repository"
)

const ctxPostKey = "ownedPost"

// PostOwnership gates mutation of a post addressed by the :id path param.
// The id format is checked before any store lookup; a malformed id can never
// match and fails fast. The post may be acted on by its owner or an admin.
// On success the loaded post is attached to the context for the handler.
// Runs after RequireUser.
func PostOwnership(posts repository.PostRepository, flash FlashWriter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			flash.Error(c, "Invalid post ID")
			c.Redirect(http.StatusSeeOther, "/posts")
			c.Abort()
			return
		}

		p, err := posts.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				flash.Error(c, "Post not found")
			} else {
				logger.WithError(err).WithField("post_id", id).Error("ownership check failed")
				flash.Error(c, "Something went wrong")
			}
			c.Redirect(http.StatusSeeOther, "/posts")
			c.Abort()
			return
		}

		u, ok := PrincipalFrom(c)
		if !ok {
			flash.Error(c, "You must be logged in to access this page.")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if p.CreatedBy != u.ID && !u.IsAdmin {
			flash.Error(c, "Unauthorized")
			c.Redirect(http.StatusSeeOther, "/posts")
			c.Abort()
			return
		}

		c.Set(ctxPostKey, p)
		c.Next()
	}
}

// PostFrom returns the post loaded by PostOwnership.
func PostFrom(c *gin.Context) (*entity.Post, bool) {
	v, ok := c.Get(ctxPostKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*entity.Post)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
