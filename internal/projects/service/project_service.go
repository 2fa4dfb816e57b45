package service

import (
	"context"
	"log"
	"time"

	"github.com/jazbelrose/mylg-backend/internal/projects/domain"
	"github.com/jazbelrose/mylg-backend/internal/projects/repository"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

// UserProjects keeps the profile-side project list in step with team
// membership; satisfied by the auth user repository.
type UserProjects interface {
	AddProject(ctx context.Context, userID, projectID string) error
	RemoveProject(ctx context.Context, userID, projectID string) error
}

// ProjectService handles business logic and realtime fanout for projects.
type ProjectService struct {
	repo  *repository.Repo
	users UserProjects
	rt    realtime.Publisher
}

func NewProjectService(repo *repository.Repo, users UserProjects, rt realtime.Publisher) *ProjectService {
	return &ProjectService{repo: repo, users: users, rt: rt}
}

// List returns every project for admins and team-scoped projects otherwise.
func (s *ProjectService) List(ctx context.Context, userID string, isAdmin bool) ([]domain.Project, error) {
	if isAdmin {
		return s.repo.List(ctx)
	}
	return s.repo.ListForUser(ctx, userID)
}

// Get loads full project detail, enforcing team visibility for non-admins.
func (s *ProjectService) Get(ctx context.Context, userID string, isAdmin bool, projectID string) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !p.HasMember(userID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// GetBySlug resolves a project by slug with the same visibility rules.
func (s *ProjectService) GetBySlug(ctx context.Context, userID string, isAdmin bool, slug string) (*domain.Project, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !p.HasMember(userID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Create makes a new project owned by the caller.
func (s *ProjectService) Create(ctx context.Context, ownerID, title string, budget domain.Budget) (*domain.Project, error) {
	p, err := s.repo.Create(ctx, ownerID, title, budget)
	if err != nil {
		return nil, err
	}
	if err := s.users.AddProject(ctx, ownerID, p.ProjectID); err != nil {
		log.Printf("[projects] failed to record project on profile user=%s: %v", ownerID, err)
	}
	return p, nil
}

// Update applies a version-guarded partial update and pushes the
// confirmation event that tells clients to refetch.
func (s *ProjectService) Update(ctx context.Context, userID string, isAdmin bool, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	if _, err := s.Get(ctx, userID, isAdmin, projectID); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, projectID, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, projectID, realtime.EventProjectUpdated)
	return p, nil
}

// Delete soft-deletes a project (admin only, enforced by routing).
func (s *ProjectService) Delete(ctx context.Context, projectID string) (bool, error) {
	ok, err := s.repo.SoftDelete(ctx, projectID)
	if err != nil || !ok {
		return ok, err
	}
	s.publish(ctx, projectID, realtime.EventProjectUpdated)
	return true, nil
}

// AddTeamMember assigns a user to the project and mirrors the membership on
// their profile.
func (s *ProjectService) AddTeamMember(ctx context.Context, projectID, userID, role string) error {
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return err
	}
	if err := s.repo.AddTeamMember(ctx, projectID, userID, role); err != nil {
		return err
	}
	if err := s.users.AddProject(ctx, userID, projectID); err != nil {
		log.Printf("[projects] failed to record project on profile user=%s: %v", userID, err)
	}
	s.publish(ctx, projectID, realtime.EventProjectUpdated)
	return nil
}

// RemoveTeamMember drops a user from the project team.
func (s *ProjectService) RemoveTeamMember(ctx context.Context, projectID, userID string) error {
	ok, err := s.repo.RemoveTeamMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	if err := s.users.RemoveProject(ctx, userID, projectID); err != nil {
		log.Printf("[projects] failed to drop project from profile user=%s: %v", userID, err)
	}
	s.publish(ctx, projectID, realtime.EventProjectUpdated)
	return nil
}

func (s *ProjectService) publish(ctx context.Context, projectID, eventType string) {
	if s.rt == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := s.rt.Publish(pubCtx, realtime.ProjectConversation(projectID), realtime.Event{
		Type:      eventType,
		ProjectID: projectID,
	})
	if err != nil {
		log.Printf("[projects] publish %s failed project=%s: %v", eventType, projectID, err)
	}
}
