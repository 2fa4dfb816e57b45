package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// UserID extracts the authenticated user ID from the Gin context.
// This is set by JWTAuthMiddleware.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// Role extracts the authenticated user's role from the Gin context.
func Role(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxRole))
}

// IsAdmin reports whether the request carries the admin role.
// Role strings are compared case-insensitively.
func IsAdmin(c *gin.Context) bool {
	return strings.EqualFold(Role(c), "admin")
}
