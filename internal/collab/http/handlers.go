package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/auth"
	"github.com/jazbelrose/mylg-backend/internal/collab/domain"
	"github.com/jazbelrose/mylg-backend/internal/collab/service"
)

// Handler bundles the dependencies for invite HTTP endpoints.
type Handler struct {
	svc *service.InviteService
}

func New(svc *service.InviteService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches invite routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.send)
	rg.GET("/incoming", h.incoming)
	rg.GET("/outgoing", h.outgoing)
	rg.POST("/:invite_id/accept", h.accept)
	rg.POST("/:invite_id/decline", h.decline)
	rg.POST("/:invite_id/cancel", h.cancel)
}

type sendReq struct {
	ToUserID string `json:"toUserId"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ToUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	inv, err := h.svc.Send(c.Request.Context(), auth.UserID(c), req.ToUserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfInvite), errors.Is(err, domain.ErrDuplicateInvite):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "invite": inv})
}

func (h *Handler) incoming(c *gin.Context) {
	invites, err := h.svc.Incoming(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invites": invites})
}

func (h *Handler) outgoing(c *gin.Context) {
	invites, err := h.svc.Outgoing(c.Request.Context(), auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invites": invites})
}

func (h *Handler) accept(c *gin.Context) {
	h.transition(c, func(id string) (*domain.CollabInvite, error) {
		return h.svc.Accept(c.Request.Context(), id)
	}, func(inv *domain.CollabInvite, userID string) bool {
		return inv.ToUserID == userID
	})
}

func (h *Handler) decline(c *gin.Context) {
	h.transition(c, func(id string) (*domain.CollabInvite, error) {
		return h.svc.Decline(c.Request.Context(), id)
	}, func(inv *domain.CollabInvite, userID string) bool {
		return inv.ToUserID == userID
	})
}

func (h *Handler) cancel(c *gin.Context) {
	h.transition(c, func(id string) (*domain.CollabInvite, error) {
		return h.svc.Cancel(c.Request.Context(), id)
	}, func(inv *domain.CollabInvite, userID string) bool {
		return inv.FromUserID == userID
	})
}

// transition checks the caller owns the relevant side of the invite before
// applying the state change.
func (h *Handler) transition(c *gin.Context, apply func(string) (*domain.CollabInvite, error), allowed func(*domain.CollabInvite, string) bool) {
	id := c.Param("invite_id")

	inv, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "invite not found"})
		return
	}
	if !allowed(inv, auth.UserID(c)) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
		return
	}

	inv, err = apply(id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "invite not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "invite is not pending"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "invite": inv})
}
