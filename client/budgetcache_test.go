package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	budgetdomain "github.com/jazbelrose/mylg-backend/internal/budgets/domain"
)

func budgetCacheFixture(t *testing.T) (*BudgetCache, *int) {
	t.Helper()
	fetches := 0
	revision := 1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fetches++
			json.NewEncoder(w).Encode(map[string]any{
				"ok":           true,
				"budgetHeader": budgetdomain.BudgetHeader{BudgetID: "b1", ProjectID: "p1", Revision: revision},
				"budgetItems": []budgetdomain.BudgetItem{
					{ElementKey: "loft-0001", Category: "Lighting"},
				},
			})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/revisions"):
			revision++
			json.NewEncoder(w).Encode(map[string]any{
				"ok":           true,
				"budgetHeader": budgetdomain.BudgetHeader{BudgetID: "b1", ProjectID: "p1", Revision: revision},
			})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"ok":   true,
				"item": budgetdomain.BudgetItem{ElementKey: "loft-0002"},
			})
		case r.Method == http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		}
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	return NewBudgetCache(NewGateway(srv.URL, "", store)), &fetches
}

func TestBudgetCache_Get(t *testing.T) {
	bc, fetches := budgetCacheFixture(t)
	ctx := context.Background()

	header, items, err := bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, header.Revision)
	require.Len(t, items, 1)

	// Second read is served from the cache.
	_, _, err = bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, *fetches)

	bc.Invalidate("p1")
	_, _, err = bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, *fetches)
}

func TestBudgetCache_Get_MissingHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          true,
			"budgetItems": []budgetdomain.BudgetItem{{ElementKey: "loft-0001"}},
		})
	}))
	t.Cleanup(srv.Close)
	bc := NewBudgetCache(NewGateway(srv.URL, "", NewStore()))
	ctx := context.Background()

	header, _, err := bc.Get(ctx, "p1")
	require.Error(t, err)
	assert.Nil(t, header)

	// The broken response was not cached; repeat reads error the same way
	// instead of tripping over a nil entry.
	_, _, err = bc.Get(ctx, "p1")
	require.Error(t, err)

	_, err = bc.NewRevision(ctx, "p1")
	require.Error(t, err)
}

func TestBudgetCache_MutationsInvalidate(t *testing.T) {
	bc, fetches := budgetCacheFixture(t)
	ctx := context.Background()

	_, _, err := bc.Get(ctx, "p1")
	require.NoError(t, err)

	created, err := bc.CreateItem(ctx, "p1", budgetdomain.BudgetItem{Category: "Furniture"})
	require.NoError(t, err)
	assert.Equal(t, "loft-0002", created.ElementKey)

	// The next read refetches and picks up the server-assigned key.
	_, _, err = bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, *fetches)

	require.NoError(t, bc.DeleteItem(ctx, "p1", "loft-0002"))
	_, _, err = bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, *fetches)
}

func TestBudgetCache_NewRevision(t *testing.T) {
	bc, _ := budgetCacheFixture(t)
	ctx := context.Background()

	header, err := bc.NewRevision(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, header.Revision)

	// The cached header was invalidated, so the bump is visible.
	fresh, _, err := bc.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Revision)
}

func TestPreviewNextElementKey(t *testing.T) {
	items := []budgetdomain.BudgetItem{{ElementKey: "loft-0001"}, {ElementKey: "loft-0003"}}
	assert.Equal(t, "loft-0004", PreviewNextElementKey("loft", items))
}
