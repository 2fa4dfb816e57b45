package client

import (
	"context"
	"fmt"
	"sync"

	budgetdomain "github.com/jazbelrose/mylg-backend/internal/budgets/domain"
)

// BudgetCache keeps one budget (header plus line items) per project so pages
// can render without refetching on every visit. Mutations go through the
// gateway and invalidate the cached entry; the next read refetches.
type BudgetCache struct {
	gateway *Gateway

	mu      sync.Mutex
	entries map[string]*budgetEntry
}

type budgetEntry struct {
	header *budgetdomain.BudgetHeader
	items  []budgetdomain.BudgetItem
}

func NewBudgetCache(gateway *Gateway) *BudgetCache {
	return &BudgetCache{
		gateway: gateway,
		entries: make(map[string]*budgetEntry),
	}
}

// Get returns the budget for a project, fetching it on first access or after
// invalidation.
func (bc *BudgetCache) Get(ctx context.Context, projectID string) (*budgetdomain.BudgetHeader, []budgetdomain.BudgetItem, error) {
	bc.mu.Lock()
	if e, ok := bc.entries[projectID]; ok {
		header := *e.header
		items := append([]budgetdomain.BudgetItem(nil), e.items...)
		bc.mu.Unlock()
		return &header, items, nil
	}
	bc.mu.Unlock()

	header, items, err := bc.gateway.FetchBudget(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if header == nil {
		// A response without a header must not be cached, or every later
		// read would trip over the nil entry.
		return nil, nil, fmt.Errorf("budget for project %s has no header", projectID)
	}

	bc.mu.Lock()
	bc.entries[projectID] = &budgetEntry{header: header, items: items}
	bc.mu.Unlock()
	return header, append([]budgetdomain.BudgetItem(nil), items...), nil
}

// Invalidate drops the cached budget for a project. Realtime budget-updated
// events and local mutations both call this.
func (bc *BudgetCache) Invalidate(projectID string) {
	bc.mu.Lock()
	delete(bc.entries, projectID)
	bc.mu.Unlock()
}

// CreateItem adds a line item through the gateway and invalidates the cache
// so the server-assigned element key is picked up on the next read.
func (bc *BudgetCache) CreateItem(ctx context.Context, projectID string, item budgetdomain.BudgetItem) (*budgetdomain.BudgetItem, error) {
	created, err := bc.gateway.CreateBudgetItem(ctx, projectID, item)
	if err != nil {
		return nil, err
	}
	bc.Invalidate(projectID)
	return created, nil
}

// DeleteItem removes a line item and invalidates the cache.
func (bc *BudgetCache) DeleteItem(ctx context.Context, projectID, elementKey string) error {
	if err := bc.gateway.DeleteBudgetItem(ctx, projectID, elementKey); err != nil {
		return err
	}
	bc.Invalidate(projectID)
	return nil
}

// NewRevision bumps the revision from the cached header's value.
func (bc *BudgetCache) NewRevision(ctx context.Context, projectID string) (*budgetdomain.BudgetHeader, error) {
	header, _, err := bc.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	bumped, err := bc.gateway.NewBudgetRevision(ctx, projectID, header.Revision)
	if err != nil {
		return nil, err
	}
	bc.Invalidate(projectID)
	return bumped, nil
}

// PreviewNextElementKey computes the element key the next item would get if
// keys were assigned purely from the loaded items. The server remains the
// authority; this is for display only.
func PreviewNextElementKey(slug string, items []budgetdomain.BudgetItem) string {
	return budgetdomain.NextElementKey(slug, items)
}
