package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func setupAuthRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func request(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := setupAuthRouter()

	t.Run("accepts a valid token and sets identity", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "u1",
			"role": "designer",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		w := request(r, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"u1"`)
		assert.Contains(t, w.Body.String(), `"role":"designer"`)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request(r, "").Code)
	})

	t.Run("rejects a bad signature", func(t *testing.T) {
		token := signToken(t, "wrong-secret", jwt.MapClaims{"sub": "u1"})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"role": "admin"})
		assert.Equal(t, http.StatusUnauthorized, request(r, token).Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	r := setupAuthRouter(RequireAdmin())

	t.Run("admin passes case-insensitively", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "Admin"})
		assert.Equal(t, http.StatusOK, request(r, token).Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "role": "client"})
		assert.Equal(t, http.StatusForbidden, request(r, token).Code)
	})
}
