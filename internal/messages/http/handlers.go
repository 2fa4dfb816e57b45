package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/messages/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Repo is what the handler needs from the message store.
type Repo interface {
	List(ctx context.Context, conversationID string, asc bool, limit int32) ([]domain.Message, error)
	Delete(ctx context.Context, conversationID, messageID string) error
}

// Handler serves the direct-message API. The surface mirrors the original
// single-function deployment: every method arrives on one route and is
// dispatched here, with 405 for anything unsupported.
type Handler struct {
	repo Repo
}

func New(repo Repo) *Handler {
	return &Handler{repo: repo}
}

// Register attaches the message endpoint to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.Any("", h.Handle)
}

func (h *Handler) Handle(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet:
		h.get(c)
	case http.MethodDelete:
		h.delete(c)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}

func (h *Handler) get(c *gin.Context) {
	conversationID := c.Query("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
		return
	}

	asc := c.Query("sort") != "desc"
	limit := ParseLimit(c.Query("limit"))

	messages, err := h.repo.List(c.Request.Context(), conversationID, asc, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch messages", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) delete(c *gin.Context) {
	conversationID := c.Query("conversationId")
	messageID := c.Query("messageId")
	if conversationID == "" || messageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId and messageId are required"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), conversationID, messageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ParseLimit applies the query limit rules: default 50, clamp to 200,
// non-numeric or non-positive values fall back to the default.
func ParseLimit(raw string) int32 {
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return int32(n)
}
