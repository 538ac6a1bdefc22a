package router

import (
	"github.com/mejova/bloggy/internal/application"
	"github.com/mejova/bloggy/internal/container"
	pginfra "github.com/mejova/bloggy/internal/infrastructure/postgres"
	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/interface/web"
	"github.com/mejova/bloggy/internal/router/modules"
)

// InitModules builds the repository/service/handler graph from the container
// and registers every feature module. Called once during startup.
func InitModules(reg *Registry, c *container.Container) {
	userRepo := pginfra.NewUserRepository(c.PG)
	postRepo := pginfra.NewPostRepository(c.PG)

	users := application.NewUserService(userRepo, c.Logger)
	posts := application.NewPostService(postRepo, c.Logger, c.ES, c.Cfg.ESPostsIndex)

	authHandler := web.NewAuthHandler(users, c.Sessions, c.Logger)
	postHandler := web.NewPostHandler(posts, c.Sessions, c.Logger)
	adminHandler := web.NewAdminHandler(users, posts, c.Sessions, c.Logger)

	// Every request resolves its principal before any route logic runs;
	// state-changing requests must then carry the session's CSRF token.
	reg.Use(middleware.Principal(c.Sessions, userRepo, c.Logger))
	reg.Use(middleware.CSRF(c.Sessions, c.Sessions))

	reg.Add(modules.NewAuth(authHandler, c))
	reg.Add(modules.NewPosts(postHandler, postRepo, c))
	reg.Add(modules.NewAdmin(adminHandler, c))
}
