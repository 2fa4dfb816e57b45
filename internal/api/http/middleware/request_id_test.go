package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) {
		*seen = RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestID(t *testing.T) {
	t.Run("echoes an incoming X-Request-Id", func(t *testing.T) {
		var seen string
		r := requestIDRouter(&seen)

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "rid-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "rid-123", seen)
	})

	t.Run("generates a uuid when the header is missing", func(t *testing.T) {
		var seen string
		r := requestIDRouter(&seen)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		rid := w.Header().Get("X-Request-Id")
		require.NotEmpty(t, rid)
		_, err := uuid.Parse(rid)
		assert.NoError(t, err)
		assert.Equal(t, rid, seen)
	})

	t.Run("blank header is treated as missing", func(t *testing.T) {
		var seen string
		r := requestIDRouter(&seen)

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "   ")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		_, err := uuid.Parse(w.Header().Get("X-Request-Id"))
		assert.NoError(t, err)
	})
}

func TestRequestIDFrom(t *testing.T) {
	assert.Empty(t, RequestIDFrom(t.Context()))
}
