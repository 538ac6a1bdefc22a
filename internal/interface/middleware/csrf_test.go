package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeCSRF accepts exactly one token.
type fakeCSRF struct{ token string }

func (f *fakeCSRF) CSRFToken(_ *gin.Context) string { return f.token }
func (f *fakeCSRF) CheckCSRF(_ *gin.Context, tok string) bool {
	return tok != "" && tok == f.token
}

func runCSRF(t *testing.T, method, token, referer string) (*httptest.ResponseRecorder, *fakeFlash, bool) {
	t.Helper()
	flash := &fakeFlash{}
	reached := false
	r := gin.New()
	r.Use(CSRF(&fakeCSRF{token: "tok-1"}, flash))
	handler := func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	}
	r.GET("/posts/new", handler)
	r.POST("/posts", handler)

	var req *http.Request
	if method == http.MethodPost {
		form := url.Values{"title": {"hello"}}
		if token != "" {
			form.Set("_csrf", token)
		}
		req = httptest.NewRequest(method, "/posts", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, "/posts/new", nil)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, flash, reached
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	t.Run("safe methods pass without a token", func(t *testing.T) {
		_, flash, reached := runCSRF(t, http.MethodGet, "", "")
		assert.True(t, reached)
		assert.Empty(t, flash.errors)
	})

	t.Run("matching token passes", func(t *testing.T) {
		w, flash, reached := runCSRF(t, http.MethodPost, "tok-1", "")
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, flash.errors)
	})

	t.Run("missing token is sent back", func(t *testing.T) {
		w, flash, reached := runCSRF(t, http.MethodPost, "", "/posts/new")
		assert.False(t, reached)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/posts/new", w.Header().Get("Location"))
		assert.Equal(t, []string{"Invalid CSRF token."}, flash.errors)
	})

	t.Run("forged token without referer lands on the homepage", func(t *testing.T) {
		w, flash, reached := runCSRF(t, http.MethodPost, "forged", "")
		assert.False(t, reached)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, []string{"Invalid CSRF token."}, flash.errors)
	})
}
