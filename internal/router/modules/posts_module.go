package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/mejova/bloggy/internal/container"
	"github.com/mejova/bloggy/internal/domain/repository"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/interface/web"
)

// PostsModule wires the public blog pages and the authenticated post CRUD.
// Mutating routes pass RequireUser, then PostOwnership for path-addressed
// posts, before the handler runs.
type PostsModule struct {
	Handler   *web.PostHandler
	PostRepo  repository.PostRepository
	Container *container.Container
}

func NewPosts(h *web.PostHandler, repo repository.PostRepository, c *container.Container) *PostsModule {
	return &PostsModule{Handler: h, PostRepo: repo, Container: c}
}

func (m *PostsModule) Register(rg *gin.RouterGroup) {
	c := m.Container
	auth := middleware.RequireUser(c.Sessions)
	owner := middleware.PostOwnership(m.PostRepo, c.Sessions, c.Logger)

	rg.GET("/", m.Handler.Home)
	rg.GET("/posts", m.Handler.List)
	rg.GET("/search", m.Handler.Search)
	rg.GET("/posts/:id", m.Handler.Show)

	rg.GET("/posts/new", auth, m.Handler.NewPage)
	rg.POST("/posts", auth, m.Handler.Create)
	rg.GET("/posts/:id/edit", auth, owner, m.Handler.EditPage)
	rg.POST("/posts/:id", auth, owner, m.Handler.Update)
	rg.POST("/posts/:id/delete", auth, owner, m.Handler.Delete)
}
