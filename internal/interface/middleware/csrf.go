package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CSRFSource mints and checks per-session CSRF tokens.
// Implemented by session.Manager.
type CSRFSource interface {
	CSRFToken(c *gin.Context) string
	CheckCSRF(c *gin.Context, token string) bool
}

// CSRF rejects state-changing requests whose _csrf form field does not match
// the token bound to the session. Safe methods pass through; the views embed
// the token via the render helper. A failed check sends the visitor back to
// the page they came from.
func CSRF(tokens CSRFSource, flash FlashWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if !tokens.CheckCSRF(c, c.PostForm("_csrf")) {
			flash.Error(c, "Invalid CSRF token.")
			back := c.Request.Referer()
			if back == "" {
				back = "/"
			}
			c.Redirect(http.StatusSeeOther, back)
			c.Abort()
			return
		}
		c.Next()
	}
}
