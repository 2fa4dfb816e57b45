package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jazbelrose/mylg-backend/internal/collab/domain"
)

// InviteRepository provides persistence operations for collaborator invites.
type InviteRepository struct {
	db *pgxpool.Pool
}

func NewInviteRepository(db *pgxpool.Pool) *InviteRepository {
	return &InviteRepository{db: db}
}

const inviteColumns = `id, from_user_id, to_user_id, status, created_at, updated_at`

// Create opens a pending invite. A partial unique index on pending pairs
// maps duplicates to ErrDuplicateInvite.
func (r *InviteRepository) Create(ctx context.Context, fromUserID, toUserID string) (*domain.CollabInvite, error) {
	if fromUserID == toUserID {
		return nil, domain.ErrSelfInvite
	}

	const q = `
INSERT INTO collab_invites (id, from_user_id, to_user_id, status)
VALUES ($1, $2, $3, 'pending')
RETURNING ` + inviteColumns + `;`

	row := r.db.QueryRow(ctx, q, uuid.New().String(), fromUserID, toUserID)
	inv, err := scanInvite(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateInvite
		}
		return nil, err
	}
	return inv, nil
}

// GetByID loads one invite.
func (r *InviteRepository) GetByID(ctx context.Context, id string) (*domain.CollabInvite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM collab_invites WHERE id = $1;`
	inv, err := scanInvite(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// ListIncoming returns pending invites sent to the user.
func (r *InviteRepository) ListIncoming(ctx context.Context, userID string) ([]domain.CollabInvite, error) {
	const q = `
SELECT ` + inviteColumns + `
FROM collab_invites
WHERE to_user_id = $1 AND status = 'pending'
ORDER BY created_at DESC;`
	return r.list(ctx, q, userID)
}

// ListOutgoing returns pending invites sent by the user.
func (r *InviteRepository) ListOutgoing(ctx context.Context, userID string) ([]domain.CollabInvite, error) {
	const q = `
SELECT ` + inviteColumns + `
FROM collab_invites
WHERE from_user_id = $1 AND status = 'pending'
ORDER BY created_at DESC;`
	return r.list(ctx, q, userID)
}

// Accept flips a pending invite to accepted and links both users as
// collaborators in the same transaction, so the profile append can never be
// lost between the status change and a separate profile write.
func (r *InviteRepository) Accept(ctx context.Context, id string) (*domain.CollabInvite, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE collab_invites
SET status = 'accepted', updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + inviteColumns + `;`

	inv, err := scanInvite(tx.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, err
	}

	const link = `
UPDATE user_profiles
SET collaborators = array_append(collaborators, $2),
    version = version + 1, updated_at = now()
WHERE user_id = $1 AND NOT collaborators @> ARRAY[$2];`

	if _, err := tx.Exec(ctx, link, inv.FromUserID, inv.ToUserID); err != nil {
		return nil, fmt.Errorf("link collaborator: %w", err)
	}
	if _, err := tx.Exec(ctx, link, inv.ToUserID, inv.FromUserID); err != nil {
		return nil, fmt.Errorf("link collaborator: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// SetStatus applies a decline or cancel to a pending invite.
func (r *InviteRepository) SetStatus(ctx context.Context, id, status string) (*domain.CollabInvite, error) {
	const q = `
UPDATE collab_invites
SET status = $2, updated_at = now()
WHERE id = $1 AND status = 'pending'
RETURNING ` + inviteColumns + `;`

	inv, err := scanInvite(r.db.QueryRow(ctx, q, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.transitionError(ctx, id)
		}
		return nil, err
	}
	return inv, nil
}

// ExpirePending cancels pending invites older than the given age.
func (r *InviteRepository) ExpirePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	const q = `
UPDATE collab_invites
SET status = 'cancelled', updated_at = now()
WHERE status = 'pending' AND created_at < now() - $1::interval;`
	tag, err := r.db.Exec(ctx, q, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// transitionError distinguishes "no such invite" from "not pending".
func (r *InviteRepository) transitionError(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

func (r *InviteRepository) list(ctx context.Context, q, userID string) ([]domain.CollabInvite, error) {
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CollabInvite, 0, 8)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func scanInvite(row pgx.Row) (*domain.CollabInvite, error) {
	var inv domain.CollabInvite
	err := row.Scan(&inv.ID, &inv.FromUserID, &inv.ToUserID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
