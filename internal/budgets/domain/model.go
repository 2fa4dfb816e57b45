package domain

import (
	"errors"
	"time"
)

// BudgetHeader carries the manual revision counter for a project's budget.
// Revision is a plain integer, incremented by an explicit "new revision"
// action, not a version vector.
type BudgetHeader struct {
	BudgetID  string    `json:"budgetId"`
	ProjectID string    `json:"projectId"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BudgetItem is a single line item. ElementKey is "{slug}-{0001..}" and is
// allocated server-side so two concurrent creators cannot collide.
type BudgetItem struct {
	ElementKey    string    `json:"elementKey"`
	BudgetID      string    `json:"budgetId"`
	ProjectID     string    `json:"projectId"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	Quantity      float64   `json:"quantity"`
	ItemUnitCost  float64   `json:"itemUnitCost"`
	ItemFinalCost float64   `json:"itemFinalCost"`
	Revision      int       `json:"revision"`
	AreaGroup     string    `json:"areaGroup,omitempty"`
	InvoiceGroup  string    `json:"invoiceGroup,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("budget not found")
	ErrItemNotFound     = errors.New("budget item not found")
	ErrRevisionConflict = errors.New("budget revision conflict")
)
