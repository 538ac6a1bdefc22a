package web

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mejova/bloggy/internal/application"
	"github.com/mejova/bloggy/internal/domain/repository"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/session"
)

// AdminHandler serves the moderation surface. Every route is behind
// RequireAdmin.
type AdminHandler struct {
	Users    *application.UserService
	Posts    *application.PostService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewAdminHandler(users *application.UserService, posts *application.PostService, sessions *session.Manager, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Posts: posts, Sessions: sessions, Logger: logger}
}

// Dashboard GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	render(c, h.Sessions, "admin.html", "Admin", nil)
}

// Users GET /admin/users
func (h *AdminHandler) UserList(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("admin user list failed")
		h.Sessions.Error(c, "Error fetching users")
		redirect(c, "/admin")
		return
	}
	render(c, h.Sessions, "admin-users.html", "Users", gin.H{"Users": users})
}

// Posts GET /admin/posts
func (h *AdminHandler) PostList(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("admin post list failed")
		h.Sessions.Error(c, "Error fetching posts")
		redirect(c, "/admin")
		return
	}
	render(c, h.Sessions, "admin-posts.html", "Posts", gin.H{"Posts": posts})
}

// DeletePost POST /admin/posts/:id/delete — admins may delete any post.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.Sessions.Error(c, "Invalid post ID")
		redirect(c, "/admin/posts")
		return
	}

	if err := h.Posts.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Sessions.Error(c, "Post not found")
		} else {
			h.Logger.WithError(err).WithField("post_id", id).Error("admin post delete failed")
			h.Sessions.Error(c, "Something went wrong. Please try again.")
		}
		redirect(c, "/admin/posts")
		return
	}

	h.Sessions.Success(c, "Post deleted successfully.")
	redirect(c, "/admin/posts")
}

// DeleteUser POST /admin/users/:id/delete. Deleting the acting admin's own
// account is rejected before any store access; the user's posts go with the
// account (the posts table cascades on owner deletion).
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.Sessions.Error(c, "Invalid user ID")
		redirect(c, "/admin/users")
		return
	}

	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		redirect(c, "/login")
		return
	}

	if err := h.Users.Delete(c.Request.Context(), actor.ID, id); err != nil {
		switch {
		case errors.Is(err, application.ErrSelfDelete):
			h.Sessions.Error(c, "You cannot delete your own account.")
		case errors.Is(err, repository.ErrNotFound):
			h.Sessions.Error(c, "User not found")
		default:
			h.Logger.WithError(err).WithField("target_id", id).Error("admin user delete failed")
			h.Sessions.Error(c, "Something went wrong. Please try again.")
		}
		redirect(c, "/admin/users")
		return
	}

	h.Sessions.Success(c, "User deleted successfully.")
	redirect(c, "/admin/users")
}
