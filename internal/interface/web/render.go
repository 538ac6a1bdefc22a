package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mejova/bloggy/internal/interface/middleware"
	"github.com/mejova/bloggy/internal/session"
)

// render executes a view with the base data every template expects: the
// page title, the resolved principal (if any), and the drained flash queue.
// Each handler ends in exactly one render or one redirect.
func render(c *gin.Context, sessions *session.Manager, view, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Flashes"] = sessions.Consume(c)
	data["CSRFToken"] = sessions.CSRFToken(c)
	if u, ok := middleware.PrincipalFrom(c); ok {
		data["User"] = u
	}
	c.HTML(http.StatusOK, view, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
