package service

import (
	"context"
	"log"
	"time"

	"github.com/jazbelrose/mylg-backend/internal/collab/domain"
	"github.com/jazbelrose/mylg-backend/internal/collab/repository"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

// InviteService handles the collaborator invite lifecycle. Every state
// change pushes a confirmation event to both users, which is what clients
// key their invite refresh on instead of polling on a delay.
type InviteService struct {
	repo *repository.InviteRepository
	rt   realtime.Publisher
}

func NewInviteService(repo *repository.InviteRepository, rt realtime.Publisher) *InviteService {
	return &InviteService{repo: repo, rt: rt}
}

// Send opens a pending invite from one user to another.
func (s *InviteService) Send(ctx context.Context, fromUserID, toUserID string) (*domain.CollabInvite, error) {
	inv, err := s.repo.Create(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, inv, realtime.EventInviteUpdated)
	return inv, nil
}

// Accept finalizes an invite; both users become collaborators atomically.
func (s *InviteService) Accept(ctx context.Context, id string) (*domain.CollabInvite, error) {
	inv, err := s.repo.Accept(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, inv, realtime.EventCollaboratorsUpdated)
	return inv, nil
}

// Decline rejects a pending invite.
func (s *InviteService) Decline(ctx context.Context, id string) (*domain.CollabInvite, error) {
	return s.close(ctx, id, domain.StatusDeclined)
}

// Cancel withdraws a pending invite.
func (s *InviteService) Cancel(ctx context.Context, id string) (*domain.CollabInvite, error) {
	return s.close(ctx, id, domain.StatusCancelled)
}

// Incoming lists pending invites addressed to the user.
func (s *InviteService) Incoming(ctx context.Context, userID string) ([]domain.CollabInvite, error) {
	return s.repo.ListIncoming(ctx, userID)
}

// Outgoing lists pending invites the user has sent.
func (s *InviteService) Outgoing(ctx context.Context, userID string) ([]domain.CollabInvite, error) {
	return s.repo.ListOutgoing(ctx, userID)
}

// Get loads one invite.
func (s *InviteService) Get(ctx context.Context, id string) (*domain.CollabInvite, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *InviteService) close(ctx context.Context, id, status string) (*domain.CollabInvite, error) {
	inv, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, inv, realtime.EventInviteUpdated)
	return inv, nil
}

// notify pushes the event to both sides' personal channels.
func (s *InviteService) notify(ctx context.Context, inv *domain.CollabInvite, eventType string) {
	if s.rt == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	for _, userID := range []string{inv.FromUserID, inv.ToUserID} {
		err := s.rt.Publish(pubCtx, realtime.UserConversation(userID), realtime.Event{
			Type:   eventType,
			UserID: userID,
		})
		if err != nil {
			log.Printf("[collab] publish %s failed user=%s: %v", eventType, userID, err)
		}
	}
}
