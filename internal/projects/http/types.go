package http

import (
	"context"
	"time"

	"github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

// Service is what the handlers need; the concrete implementation lives in
// the service package.
type Service interface {
	List(ctx context.Context, userID string, isAdmin bool) ([]domain.Project, error)
	Get(ctx context.Context, userID string, isAdmin bool, projectID string) (*domain.Project, error)
	GetBySlug(ctx context.Context, userID string, isAdmin bool, slug string) (*domain.Project, error)
	Create(ctx context.Context, ownerID, title string, budget domain.Budget) (*domain.Project, error)
	Update(ctx context.Context, userID string, isAdmin bool, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error)
	Delete(ctx context.Context, projectID string) (bool, error)
	AddTeamMember(ctx context.Context, projectID, userID, role string) error
	RemoveTeamMember(ctx context.Context, projectID, userID string) error
}

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Title  string        `json:"title"`
	Budget domain.Budget `json:"budget"`
}

type updateReq struct {
	Title       *string        `json:"title"`
	Status      *string        `json:"status"`
	Description *string        `json:"description"`
	Location    *string        `json:"location"`
	Address     *string        `json:"address"`
	Tags        []string       `json:"tags"`
	Budget      *domain.Budget `json:"budget"`
	Finishline  *time.Time     `json:"finishline"`
	Version     int64          `json:"version"`
}

type teamReq struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
