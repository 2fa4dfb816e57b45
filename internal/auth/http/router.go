package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/auth/middleware"
)

// RegisterPublic attaches the unauthenticated registration routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/confirm", h.confirm)
}

// RegisterUsers attaches the authenticated user routes.
func (h *Handler) RegisterUsers(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.GET("", h.list)
	rg.PUT("/:user_id", h.update)
	rg.PUT("/:user_id/role", middleware.RequireAdmin(), h.setRole)
}
