package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/auth/middleware"
)

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/slug/:slug", h.getBySlug)
	rg.GET("/:project_id", h.get)
	rg.PUT("/:project_id", h.update)
	rg.DELETE("/:project_id", middleware.RequireAdmin(), h.delete)
	rg.POST("/:project_id/team", middleware.RequireAdmin(), h.addTeamMember)
	rg.DELETE("/:project_id/team/:user_id", middleware.RequireAdmin(), h.removeTeamMember)
}
