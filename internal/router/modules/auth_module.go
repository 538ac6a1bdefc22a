package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/mejova/bloggy/internal/container"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/interface/web"
)

// AuthModule wires registration, login, and logout.
// The credential-guessing surfaces (POST /login, POST /register) are
// rate-limited per IP and path.
type AuthModule struct {
	Handler   *web.AuthHandler
	Container *container.Container
}

func NewAuth(h *web.AuthHandler, c *container.Container) *AuthModule {
	return &AuthModule{Handler: h, Container: c}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	c := m.Container
	loginLimiter := middleware.RateLimit(c.Redis, c.Cfg.AuthRateMax, c.Cfg.AuthRateWindow,
		middleware.KeyByIPAndPath(), nil, c.Sessions, "/login")
	registerLimiter := middleware.RateLimit(c.Redis, c.Cfg.AuthRateMax, c.Cfg.AuthRateWindow,
		middleware.KeyByIPAndPath(), nil, c.Sessions, "/register")

	rg.GET("/register", m.Handler.RegisterPage)
	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.GET("/login", m.Handler.LoginPage)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.GET("/logout", m.Handler.Logout)
}
