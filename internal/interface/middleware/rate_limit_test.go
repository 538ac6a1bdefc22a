package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func rateLimitedRouter(rdb *redis.Client, max int, flash *fakeFlash) *gin.Engine {
	r := gin.New()
	r.POST("/login",
		RateLimit(rdb, max, time.Minute, KeyByIPAndPath(), nil, flash, "/login"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("counts down and blocks over the limit", func(t *testing.T) {
		flash := &fakeFlash{}
		r := rateLimitedRouter(newTestRedis(t), 2, flash)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, []string{"Too many attempts. Please try again later."}, flash.errors)
	})

	t.Run("remaining never goes negative", func(t *testing.T) {
		r := rateLimitedRouter(newTestRedis(t), 1, &fakeFlash{})

		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			last = httptest.NewRecorder()
			r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/login", nil))
		}
		assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("fails open when redis is gone", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		mr.Close()

		flash := &fakeFlash{}
		r := rateLimitedRouter(rdb, 1, flash)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
		assert.Empty(t, flash.errors)
	})
}
