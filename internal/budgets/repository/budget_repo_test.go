package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jazbelrose/mylg-backend/internal/budgets/domain"
)

func setupBudgetRepo(t *testing.T) (*BudgetRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBudgetRepository(client), mr
}

func TestBudgetRepository_EnsureHeader(t *testing.T) {
	repo, _ := setupBudgetRepo(t)
	ctx := context.Background()

	t.Run("creates header at revision 1", func(t *testing.T) {
		h, err := repo.EnsureHeader(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "p1", h.ProjectID)
		assert.Equal(t, 1, h.Revision)
		assert.NotEmpty(t, h.BudgetID)
	})

	t.Run("returns the same header on later calls", func(t *testing.T) {
		first, err := repo.EnsureHeader(ctx, "p2")
		require.NoError(t, err)
		second, err := repo.EnsureHeader(ctx, "p2")
		require.NoError(t, err)
		assert.Equal(t, first.BudgetID, second.BudgetID)
	})

	t.Run("GetHeader without header reports not found", func(t *testing.T) {
		_, err := repo.GetHeader(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBudgetRepository_CreateItem(t *testing.T) {
	repo, _ := setupBudgetRepo(t)
	ctx := context.Background()

	t.Run("allocates sequential element keys", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			item := &domain.BudgetItem{Category: "Lighting", Quantity: 2, ItemUnitCost: 50}
			require.NoError(t, repo.CreateItem(ctx, "p1", "loft", item))
			assert.Equal(t, fmt.Sprintf("loft-%04d", i), item.ElementKey)
			assert.Equal(t, 1, item.Revision)
		}

		items, err := repo.ListItems(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "loft-0001", items[0].ElementKey)
		assert.Equal(t, "loft-0003", items[2].ElementKey)
	})

	t.Run("tags items with the current revision", func(t *testing.T) {
		_, err := repo.EnsureHeader(ctx, "p2")
		require.NoError(t, err)
		_, err = repo.NewRevision(ctx, "p2", 1)
		require.NoError(t, err)

		item := &domain.BudgetItem{Category: "Furniture"}
		require.NoError(t, repo.CreateItem(ctx, "p2", "loft", item))
		assert.Equal(t, 2, item.Revision)
	})
}

func TestBudgetRepository_SeedSequence(t *testing.T) {
	repo, _ := setupBudgetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateItem(ctx, "p1", "loft", &domain.BudgetItem{}))
	require.NoError(t, repo.CreateItem(ctx, "p1", "loft", &domain.BudgetItem{}))
	require.NoError(t, repo.DeleteItem(ctx, "p1", "loft-0001"))

	// Deleted slots are never reused; the sequence only moves forward.
	next := &domain.BudgetItem{}
	require.NoError(t, repo.CreateItem(ctx, "p1", "loft", next))
	assert.Equal(t, "loft-0003", next.ElementKey)

	require.NoError(t, repo.SeedSequence(ctx, "p1"))
	after := &domain.BudgetItem{}
	require.NoError(t, repo.CreateItem(ctx, "p1", "loft", after))
	assert.Equal(t, "loft-0004", after.ElementKey)
}

func TestBudgetRepository_DeleteItem(t *testing.T) {
	repo, _ := setupBudgetRepo(t)
	ctx := context.Background()

	item := &domain.BudgetItem{Category: "Lighting"}
	require.NoError(t, repo.CreateItem(ctx, "p1", "loft", item))

	require.NoError(t, repo.DeleteItem(ctx, "p1", item.ElementKey))
	assert.ErrorIs(t, repo.DeleteItem(ctx, "p1", item.ElementKey), domain.ErrItemNotFound)
}

func TestBudgetRepository_NewRevision(t *testing.T) {
	repo, _ := setupBudgetRepo(t)
	ctx := context.Background()

	t.Run("bumps when the caller saw the current revision", func(t *testing.T) {
		_, err := repo.EnsureHeader(ctx, "p1")
		require.NoError(t, err)

		h, err := repo.NewRevision(ctx, "p1", 1)
		require.NoError(t, err)
		assert.Equal(t, 2, h.Revision)
	})

	t.Run("rejects a stale revision", func(t *testing.T) {
		_, err := repo.NewRevision(ctx, "p1", 1)
		assert.ErrorIs(t, err, domain.ErrRevisionConflict)
	})

	t.Run("missing budget reports not found", func(t *testing.T) {
		_, err := repo.NewRevision(ctx, "nope", 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
