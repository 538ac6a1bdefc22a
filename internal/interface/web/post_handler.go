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
	"github.com/mejova/bloggy/pkg/validation"
)

const homePostCount = 3

type PostHandler struct {
	Posts    *application.PostService
	Sessions *session.Manager
	Logger   *logrus.Logger
}

func NewPostHandler(posts *application.PostService, sessions *session.Manager, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Posts: posts, Sessions: sessions, Logger: logger}
}

type postForm struct {
	Title   string `form:"title" binding:"required"`
	Content string `form:"content" binding:"required"`
	Tags    string `form:"tags"`
}

// Home GET /
func (h *PostHandler) Home(c *gin.Context) {
	posts, err := h.Posts.Latest(c.Request.Context(), homePostCount)
	if err != nil {
		h.Logger.WithError(err).Error("homepage posts fetch failed")
		h.Sessions.Error(c, "Error loading homepage.")
		redirect(c, "/posts")
		return
	}
	render(c, h.Sessions, "home.html", "Home", gin.H{"Posts": posts})
}

// List GET /posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.Posts.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("posts fetch failed")
		h.Sessions.Error(c, "Error fetching posts.")
		redirect(c, "/")
		return
	}
	render(c, h.Sessions, "posts.html", "Posts", gin.H{"Posts": posts, "SearchTerm": ""})
}

// Search GET /search?q=
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")
	posts, err := h.Posts.Search(c.Request.Context(), query)
	if err != nil {
		h.Logger.WithError(err).WithField("query", query).Error("post search failed")
		h.Sessions.Error(c, "Error while searching.")
		redirect(c, "/")
		return
	}
	render(c, h.Sessions, "posts.html", "Search", gin.H{"Posts": posts, "SearchTerm": query})
}

// NewPage GET /posts/new (authenticated)
func (h *PostHandler) NewPage(c *gin.Context) {
	render(c, h.Sessions, "new-post.html", "New Post", nil)
}

// Create POST /posts (authenticated)
func (h *PostHandler) Create(c *gin.Context) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.Sessions.Error(c, validation.FirstMessage(err))
		redirect(c, "/posts/new")
		return
	}

	u, ok := middleware.PrincipalFrom(c)
	if !ok {
		redirect(c, "/login")
		return
	}

	p, err := h.Posts.Create(c.Request.Context(), u.ID, application.PostInput{
		Title:   form.Title,
		Content: form.Content,
		Tags:    form.Tags,
	})
	if err != nil {
		h.Logger.WithError(err).Error("post create failed")
		h.Sessions.Error(c, "Error creating post")
		redirect(c, "/posts/new")
		return
	}

	h.Sessions.Success(c, "Post created")
	redirect(c, "/posts/"+p.ID)
}

// Show GET /posts/:id
func (h *PostHandler) Show(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.Sessions.Error(c, "Invalid post ID")
		redirect(c, "/posts")
		return
	}

	p, err := h.Posts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Sessions.Error(c, "Post not found")
		} else {
			h.Logger.WithError(err).WithField("post_id", id).Error("post fetch failed")
			h.Sessions.Error(c, "Error fetching post")
		}
		redirect(c, "/posts")
		return
	}
	render(c, h.Sessions, "post.html", p.Title, gin.H{"Post": p})
}

// EditPage GET /posts/:id/edit (authenticated + ownership)
func (h *PostHandler) EditPage(c *gin.Context) {
	p, ok := middleware.PostFrom(c)
	if !ok {
		redirect(c, "/posts")
		return
	}
	render(c, h.Sessions, "edit-post.html", "Edit Post", gin.H{"Post": p})
}

// Update POST /posts/:id (authenticated + ownership)
func (h *PostHandler) Update(c *gin.Context) {
	p, ok := middleware.PostFrom(c)
	if !ok {
		redirect(c, "/posts")
		return
	}

	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.Sessions.Error(c, validation.FirstMessage(err))
		redirect(c, "/posts/"+p.ID+"/edit")
		return
	}

	if err := h.Posts.Update(c.Request.Context(), p, application.PostInput{
		Title:   form.Title,
		Content: form.Content,
		Tags:    form.Tags,
	}); err != nil {
		h.Logger.WithError(err).WithField("post_id", p.ID).Error("post update failed")
		h.Sessions.Error(c, "Error updating post")
		redirect(c, "/posts/"+p.ID+"/edit")
		return
	}

	h.Sessions.Success(c, "Post updated")
	redirect(c, "/posts/"+p.ID)
}

// Delete POST /posts/:id/delete (authenticated + ownership)
func (h *PostHandler) Delete(c *gin.Context) {
	p, ok := middleware.PostFrom(c)
	if !ok {
		redirect(c, "/posts")
		return
	}

	if err := h.Posts.Delete(c.Request.Context(), p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// already gone; deleting twice is not a fault
			h.Sessions.Error(c, "Post not found")
		} else {
			h.Logger.WithError(err).WithField("post_id", p.ID).Error("post delete failed")
			h.Sessions.Error(c, "Error deleting post")
		}
		redirect(c, "/posts")
		return
	}

	h.Sessions.Success(c, "Post deleted")
	redirect(c, "/posts")
}
