package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jazbelrose/mylg-backend/internal/budgets/domain"
	"github.com/jazbelrose/mylg-backend/internal/budgets/service"
)

// Handler bundles the dependencies for budget HTTP endpoints.
type Handler struct {
	svc *service.BudgetService
}

func New(svc *service.BudgetService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches budget routes under /projects/:project_id.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:project_id/budget", h.get)
	rg.POST("/:project_id/budget/items", h.createItem)
	rg.DELETE("/:project_id/budget/items/:element_key", h.deleteItem)
	rg.POST("/:project_id/budget/revisions", h.newRevision)
}

func (h *Handler) get(c *gin.Context) {
	header, items, err := h.svc.Get(c.Request.Context(), c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "budgetHeader": header, "budgetItems": items})
}

type createItemReq struct {
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	ItemUnitCost float64 `json:"itemUnitCost"`
	AreaGroup    string  `json:"areaGroup"`
	InvoiceGroup string  `json:"invoiceGroup"`
}

func (h *Handler) createItem(c *gin.Context) {
	var req createItemReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	item := &domain.BudgetItem{
		Category:      req.Category,
		Description:   req.Description,
		Quantity:      req.Quantity,
		ItemUnitCost:  req.ItemUnitCost,
		ItemFinalCost: req.Quantity * req.ItemUnitCost,
		AreaGroup:     req.AreaGroup,
		InvoiceGroup:  req.InvoiceGroup,
	}
	created, err := h.svc.CreateItem(c.Request.Context(), c.Param("project_id"), item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "item": created})
}

func (h *Handler) deleteItem(c *gin.Context) {
	err := h.svc.DeleteItem(c.Request.Context(), c.Param("project_id"), c.Param("element_key"))
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "budget item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type newRevisionReq struct {
	Revision int `json:"revision"`
}

func (h *Handler) newRevision(c *gin.Context) {
	var req newRevisionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	header, err := h.svc.NewRevision(c.Request.Context(), c.Param("project_id"), req.Revision)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "budget not found"})
		case errors.Is(err, domain.ErrRevisionConflict):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "revision changed since last read"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "budgetHeader": header})
}
