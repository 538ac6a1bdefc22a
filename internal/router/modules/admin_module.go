package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mejova/bloggy/internal/container"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/interface/web"
)

// AdminModule wires the moderation surface behind RequireAdmin, with a soft
// per-IP limiter that internal addresses bypass.
type AdminModule struct {
	Handler   *web.AdminHandler
	Container *container.Container
}

func NewAdmin(h *web.AdminHandler, c *container.Container) *AdminModule {
	return &AdminModule{Handler: h, Container: c}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	c := m.Container
	admin := rg.Group("/admin")
	admin.Use(middleware.RequireAdmin(c.Sessions))
	admin.Use(middleware.RateLimit(c.Redis, 120, time.Minute,
		middleware.KeyByIP(), middleware.AllowPrivateIP(), c.Sessions, "/admin"))
	{
		admin.GET("", m.Handler.Dashboard)
		admin.GET("/users", m.Handler.UserList)
		admin.GET("/posts", m.Handler.PostList)
		admin.POST("/posts/:id/delete", m.Handler.DeletePost)
		admin.POST("/users/:id/delete", m.Handler.DeleteUser)
	}
}
