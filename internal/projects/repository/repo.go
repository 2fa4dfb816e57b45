package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

// Repo provides persistence operations for projects.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const projectColumns = `
project_id, title, slug, status, description, location, address, tags,
budget, thumbnails, uploads, finishline, date_created, updated_at, version`

// Create inserts a new project and puts the owner on its team.
func (r *Repo) Create(ctx context.Context, ownerID, title string, budget domain.Budget) (*domain.Project, error) {
	if title == "" {
		return nil, fmt.Errorf("title required")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required")
	}

	projectID := uuid.New().String()
	slug := domain.Slugify(title)
	budgetJSON, err := json.Marshal(budget)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO projects (project_id, title, slug, status, budget)
VALUES ($1, $2, $3, 'pending', $4)
RETURNING ` + projectColumns + `;`

	row := tx.QueryRow(ctx, q, projectID, title, slug, budgetJSON)
	p, err := scanProject(row)
	if err != nil {
		return nil, err
	}

	const tq = `INSERT INTO project_team (project_id, user_id, role) VALUES ($1, $2, 'owner');`
	if _, err := tx.Exec(ctx, tq, projectID, ownerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	p.Team = []domain.TeamMember{{UserID: ownerID, Role: "owner"}}
	return p, nil
}

// GetByID loads one project's full detail including its team.
func (r *Repo) GetByID(ctx context.Context, projectID string) (*domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE project_id = $1 AND deleted_at IS NULL;`

	row := r.db.QueryRow(ctx, q, projectID)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if p.Team, err = r.team(ctx, p.ProjectID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetBySlug resolves a project by its URL slug.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE slug = $1 AND deleted_at IS NULL;`

	row := r.db.QueryRow(ctx, q, slug)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if p.Team, err = r.team(ctx, p.ProjectID); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all non-deleted projects (admin view).
func (r *Repo) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects
WHERE deleted_at IS NULL
ORDER BY date_created DESC;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListForUser returns projects where the user is on the team.
func (r *Repo) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `
SELECT ` + projectColumns + `
FROM projects p
JOIN project_team t ON t.project_id = p.project_id
WHERE t.user_id = $1 AND p.deleted_at IS NULL
ORDER BY p.date_created DESC;`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// Update applies a partial update guarded by the caller's last-seen version.
// A version mismatch on a live row returns ErrVersionConflict.
func (r *Repo) Update(ctx context.Context, projectID string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	current, err := r.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		current.Title = *req.Title
		current.Slug = domain.Slugify(*req.Title)
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Location != nil {
		current.Location = *req.Location
	}
	if req.Address != nil {
		current.Address = *req.Address
	}
	if req.Tags != nil {
		current.Tags = req.Tags
	}
	if req.Budget != nil {
		current.Budget = *req.Budget
	}
	if req.Finishline != nil {
		current.Finishline = req.Finishline
	}

	budgetJSON, err := json.Marshal(current.Budget)
	if err != nil {
		return nil, err
	}

	const q = `
UPDATE projects
SET title = $3, slug = $4, status = $5, description = $6, location = $7,
    address = $8, tags = $9, budget = $10, finishline = $11,
    version = version + 1, updated_at = now()
WHERE project_id = $1 AND version = $2 AND deleted_at IS NULL
RETURNING ` + projectColumns + `;`

	row := r.db.QueryRow(ctx, q,
		projectID, req.ExpectedVersion,
		current.Title, current.Slug, current.Status, current.Description,
		current.Location, current.Address, current.Tags, budgetJSON,
		current.Finishline)

	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row exists (we just read it), so the version moved under us.
			return nil, domain.ErrVersionConflict
		}
		return nil, err
	}

	updated.Team = current.Team
	return updated, nil
}

// SoftDelete marks a project as deleted.
func (r *Repo) SoftDelete(ctx context.Context, projectID string) (bool, error) {
	const q = `
UPDATE projects
SET deleted_at = now(), updated_at = now()
WHERE project_id = $1 AND deleted_at IS NULL;`

	tag, err := r.db.Exec(ctx, q, projectID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// PurgeDeleted removes soft-deleted projects older than the retention window.
func (r *Repo) PurgeDeleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	const q = `DELETE FROM projects WHERE deleted_at IS NOT NULL AND deleted_at < now() - $1::interval;`
	tag, err := r.db.Exec(ctx, q, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AddTeamMember puts a user on the project team (no-op if already present).
func (r *Repo) AddTeamMember(ctx context.Context, projectID, userID, role string) error {
	const q = `
INSERT INTO project_team (project_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, user_id) DO UPDATE SET role = EXCLUDED.role;`
	_, err := r.db.Exec(ctx, q, projectID, userID, role)
	return err
}

// RemoveTeamMember drops a user from the project team.
func (r *Repo) RemoveTeamMember(ctx context.Context, projectID, userID string) (bool, error) {
	const q = `DELETE FROM project_team WHERE project_id = $1 AND user_id = $2;`
	tag, err := r.db.Exec(ctx, q, projectID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendUpload records an uploaded file on the project.
func (r *Repo) AppendUpload(ctx context.Context, projectID string, up domain.Upload) error {
	upJSON, err := json.Marshal(up)
	if err != nil {
		return err
	}
	const q = `
UPDATE projects
SET uploads = uploads || $2::jsonb, updated_at = now()
WHERE project_id = $1 AND deleted_at IS NULL;`
	tag, err := r.db.Exec(ctx, q, projectID, upJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) team(ctx context.Context, projectID string) ([]domain.TeamMember, error) {
	const q = `SELECT user_id, role FROM project_team WHERE project_id = $1 ORDER BY added_at;`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TeamMember, 0, 8)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var budgetRaw, thumbsRaw, uploadsRaw []byte
	err := row.Scan(
		&p.ProjectID, &p.Title, &p.Slug, &p.Status, &p.Description,
		&p.Location, &p.Address, &p.Tags,
		&budgetRaw, &thumbsRaw, &uploadsRaw,
		&p.Finishline, &p.DateCreated, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}
	if len(budgetRaw) > 0 {
		if err := json.Unmarshal(budgetRaw, &p.Budget); err != nil {
			return nil, fmt.Errorf("decode budget: %w", err)
		}
	}
	if len(thumbsRaw) > 0 {
		if err := json.Unmarshal(thumbsRaw, &p.Thumbnails); err != nil {
			return nil, fmt.Errorf("decode thumbnails: %w", err)
		}
	}
	if len(uploadsRaw) > 0 {
		if err := json.Unmarshal(uploadsRaw, &p.Uploads); err != nil {
			return nil, fmt.Errorf("decode uploads: %w", err)
		}
	}
	return &p, nil
}

func collectProjects(rows pgx.Rows) ([]domain.Project, error) {
	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
