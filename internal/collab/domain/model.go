package domain

import (
	"errors"
	"time"
)

// Invite statuses. The lifecycle is pending -> accepted/declined/cancelled;
// every transition goes through its dedicated endpoint.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
)

// CollabInvite links two users while one side decides.
type CollabInvite struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"fromUserId"`
	ToUserID   string    `json:"toUserId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var (
	ErrNotFound          = errors.New("invite not found")
	ErrInvalidTransition = errors.New("invite is not pending")
	ErrSelfInvite        = errors.New("cannot invite yourself")
	ErrDuplicateInvite   = errors.New("an invite between these users is already pending")
)
