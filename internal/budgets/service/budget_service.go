package service

import (
	"context"
	"log"
	"time"

	"github.com/jazbelrose/mylg-backend/internal/budgets/domain"
	"github.com/jazbelrose/mylg-backend/internal/budgets/repository"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

// SlugFunc resolves a project's slug for element-key prefixes; wired to the
// projects repository.
type SlugFunc func(ctx context.Context, projectID string) (string, error)

// BudgetService handles business logic for budget headers and line items.
type BudgetService struct {
	repo *repository.BudgetRepository
	slug SlugFunc
	rt   realtime.Publisher
}

func NewBudgetService(repo *repository.BudgetRepository, slug SlugFunc, rt realtime.Publisher) *BudgetService {
	return &BudgetService{repo: repo, slug: slug, rt: rt}
}

// Get returns the header and line items for a project, creating the header
// on first access.
func (s *BudgetService) Get(ctx context.Context, projectID string) (*domain.BudgetHeader, []domain.BudgetItem, error) {
	header, err := s.repo.EnsureHeader(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItems(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return header, items, nil
}

// CreateItem stores a new line item under a server-allocated element key.
func (s *BudgetService) CreateItem(ctx context.Context, projectID string, item *domain.BudgetItem) (*domain.BudgetItem, error) {
	slug, err := s.slug(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(ctx, projectID, slug, item); err != nil {
		return nil, err
	}
	s.publish(ctx, projectID)
	return item, nil
}

// DeleteItem removes one line item.
func (s *BudgetService) DeleteItem(ctx context.Context, projectID, elementKey string) error {
	if err := s.repo.DeleteItem(ctx, projectID, elementKey); err != nil {
		return err
	}
	s.publish(ctx, projectID)
	return nil
}

// NewRevision bumps the header revision, rejecting concurrent bumps.
func (s *BudgetService) NewRevision(ctx context.Context, projectID string, expectedRevision int) (*domain.BudgetHeader, error) {
	header, err := s.repo.NewRevision(ctx, projectID, expectedRevision)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, projectID)
	return header, nil
}

func (s *BudgetService) publish(ctx context.Context, projectID string) {
	if s.rt == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := s.rt.Publish(pubCtx, realtime.ProjectConversation(projectID), realtime.Event{
		Type:      realtime.EventBudgetUpdated,
		ProjectID: projectID,
	})
	if err != nil {
		log.Printf("[budgets] publish failed project=%s: %v", projectID, err)
	}
}
