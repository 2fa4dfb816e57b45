package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jazbelrose/mylg-backend/internal/budgets/domain"
)

const (
	headerKeyPrefix = "budget:header:" // JSON header per project: budget:header:{project_id}
	itemsKeyPrefix  = "budget:items:"  // hash elementKey -> JSON item: budget:items:{project_id}
	seqKeyPrefix    = "budget:seq:"    // element key sequence: budget:seq:{project_id}
)

// BudgetRepository handles Redis operations for budget headers and items.
type BudgetRepository struct {
	client *redis.Client
}

func NewBudgetRepository(client *redis.Client) *BudgetRepository {
	return &BudgetRepository{client: client}
}

// GetHeader retrieves the budget header for a project.
func (r *BudgetRepository) GetHeader(ctx context.Context, projectID string) (*domain.BudgetHeader, error) {
	data, err := r.client.Get(ctx, r.headerKey(projectID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget header: %w", err)
	}

	var h domain.BudgetHeader
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal budget header: %w", err)
	}
	return &h, nil
}

// EnsureHeader returns the existing header or creates one at revision 1.
func (r *BudgetRepository) EnsureHeader(ctx context.Context, projectID string) (*domain.BudgetHeader, error) {
	h, err := r.GetHeader(ctx, projectID)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	h = &domain.BudgetHeader{
		BudgetID:  uuid.New().String(),
		ProjectID: projectID,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal budget header: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.headerKey(projectID), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create budget header: %w", err)
	}
	if !ok {
		// Another creator won the race; read theirs.
		return r.GetHeader(ctx, projectID)
	}
	return h, nil
}

// ListItems returns all line items for a project ordered by element key.
func (r *BudgetRepository) ListItems(ctx context.Context, projectID string) ([]domain.BudgetItem, error) {
	raw, err := r.client.HGetAll(ctx, r.itemsKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list budget items: %w", err)
	}

	out := make([]domain.BudgetItem, 0, len(raw))
	for _, data := range raw {
		var it domain.BudgetItem
		if err := json.Unmarshal([]byte(data), &it); err != nil {
			return nil, fmt.Errorf("failed to unmarshal budget item: %w", err)
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ElementKey < out[j].ElementKey })
	return out, nil
}

// CreateItem stores a new line item tagged with the current revision. The
// element key is allocated from an atomic per-project sequence, so two
// clients creating items at once cannot compute the same key.
func (r *BudgetRepository) CreateItem(ctx context.Context, projectID, slug string, item *domain.BudgetItem) error {
	header, err := r.EnsureHeader(ctx, projectID)
	if err != nil {
		return err
	}

	for i := 0; i < 5; i++ {
		n, err := r.client.Incr(ctx, r.seqKey(projectID)).Result()
		if err != nil {
			return fmt.Errorf("failed to allocate element key: %w", err)
		}

		now := time.Now()
		item.ElementKey = fmt.Sprintf("%s-%04d", slug, n)
		item.BudgetID = header.BudgetID
		item.ProjectID = projectID
		item.Revision = header.Revision
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal budget item: %w", err)
		}

		ok, err := r.client.HSetNX(ctx, r.itemsKey(projectID), item.ElementKey, data).Result()
		if err != nil {
			return fmt.Errorf("failed to create budget item: %w", err)
		}
		if ok {
			return nil
		}
		// Sequence lagging behind imported keys; catch it up and retry.
		if err := r.SeedSequence(ctx, projectID); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed to allocate unique element key")
}

// SeedSequence raises the element-key sequence to the maximum suffix among
// existing items. Used after imports and on allocation collisions.
func (r *BudgetRepository) SeedSequence(ctx context.Context, projectID string) error {
	items, err := r.ListItems(ctx, projectID)
	if err != nil {
		return err
	}
	max := int64(domain.MaxElementSuffix(items))

	cur, err := r.client.Get(ctx, r.seqKey(projectID)).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read element key sequence: %w", err)
	}
	if cur < max {
		if err := r.client.IncrBy(ctx, r.seqKey(projectID), max-cur).Err(); err != nil {
			return fmt.Errorf("failed to seed element key sequence: %w", err)
		}
	}
	return nil
}

// DeleteItem removes a single line item.
func (r *BudgetRepository) DeleteItem(ctx context.Context, projectID, elementKey string) error {
	n, err := r.client.HDel(ctx, r.itemsKey(projectID), elementKey).Result()
	if err != nil {
		return fmt.Errorf("failed to delete budget item: %w", err)
	}
	if n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// NewRevision bumps the header revision by one, but only if the caller saw
// the current revision. A concurrent bump returns ErrRevisionConflict
// instead of skipping or colliding revision numbers.
func (r *BudgetRepository) NewRevision(ctx context.Context, projectID string, expectedRevision int) (*domain.BudgetHeader, error) {
	key := r.headerKey(projectID)
	var updated *domain.BudgetHeader

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		var h domain.BudgetHeader
		if err := json.Unmarshal([]byte(data), &h); err != nil {
			return fmt.Errorf("failed to unmarshal budget header: %w", err)
		}
		if h.Revision != expectedRevision {
			return domain.ErrRevisionConflict
		}

		h.Revision++
		h.UpdatedAt = time.Now()
		out, err := json.Marshal(&h)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = &h
		return nil
	}

	for i := 0; i < 3; i++ {
		err := r.client.Watch(ctx, txn, key)
		if err == nil {
			return updated, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, err
	}
	return nil, domain.ErrRevisionConflict
}

func (r *BudgetRepository) headerKey(projectID string) string {
	return headerKeyPrefix + projectID
}

func (r *BudgetRepository) itemsKey(projectID string) string {
	return itemsKeyPrefix + projectID
}

func (r *BudgetRepository) seqKey(projectID string) string {
	return seqKeyPrefix + projectID
}
