package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashWriter enqueues one-shot messages for the next rendered view.
// Implemented by session.Manager.
type FlashWriter interface {
	Success(c *gin.Context, text string)
	Error(c *gin.Context, text string)
}

// RequireUser blocks anonymous visitors: error flash, redirect to the login
// page, and the original request is dropped.
func RequireUser(flash FlashWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		flash.Error(c, "You must be logged in to access this page.")
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// RequireAdmin allows only authenticated users with the admin flag. Both the
// not-logged-in and not-an-admin cases redirect to the login page rather
// than rendering a 403, so the admin surface reveals nothing about itself.
func RequireAdmin(flash FlashWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := PrincipalFrom(c); ok && u.IsAdmin {
			c.Next()
			return
		}
		flash.Error(c, "You must be an admin to access this page.")
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
