// Package notifications persists user notifications and pushes them over
// the realtime channel.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Service struct {
	db *pgxpool.Pool
	rt realtime.Publisher
}

func NewService(db *pgxpool.Pool, rt realtime.Publisher) *Service {
	return &Service{db: db, rt: rt}
}

// Dispatch stores a notification and pushes it to the recipient's channel.
func (s *Service) Dispatch(ctx context.Context, userID, kind string, payload json.RawMessage) (*Notification, error) {
	n := &Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Kind:    kind,
		Payload: payload,
	}

	const q = `
INSERT INTO notifications (id, user_id, kind, payload)
VALUES ($1, $2, $3, $4)
RETURNING created_at;`
	if err := s.db.QueryRow(ctx, q, n.ID, n.UserID, n.Kind, n.Payload).Scan(&n.CreatedAt); err != nil {
		return nil, err
	}

	if s.rt != nil {
		pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := s.rt.Publish(pubCtx, realtime.UserConversation(userID), realtime.Event{
			Type:    realtime.EventNotification,
			UserID:  userID,
			Payload: payload,
		})
		if err != nil {
			log.Printf("[notifications] publish failed user=%s: %v", userID, err)
		}
	}
	return n, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const q = `
SELECT id, user_id, kind, payload, read, created_at
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2;`

	rows, err := s.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Payload, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as seen.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	const q = `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2;`
	_, err := s.db.Exec(ctx, q, id, userID)
	return err
}
