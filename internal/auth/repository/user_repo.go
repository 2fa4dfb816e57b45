package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jazbelrose/mylg-backend/internal/auth/domain"
)

// UserRepository provides persistence operations for user profiles.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
user_id, email, first_name, last_name, phone_number, role, pending,
collaborators, projects, thumbnail, company, occupation,
created_at, updated_at, last_login_at, version`

// Create inserts a new profile. A duplicate email maps to ErrUsernameExists.
func (r *UserRepository) Create(ctx context.Context, u *domain.UserProfile) error {
	const q = `
INSERT INTO user_profiles
  (user_id, email, first_name, last_name, phone_number, role, pending)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at, version;`

	err := r.db.QueryRow(ctx, q,
		u.UserID, u.Email, u.FirstName, u.LastName, u.PhoneNumber, u.Role, u.Pending).
		Scan(&u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetByID loads one profile.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const q = `SELECT ` + userColumns + ` FROM user_profiles WHERE user_id = $1;`
	return r.scanOne(r.db.QueryRow(ctx, q, userID))
}

// List returns all profiles, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	const q = `SELECT ` + userColumns + ` FROM user_profiles ORDER BY created_at DESC;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UserProfile, 0, 32)
	for rows.Next() {
		u, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update writes the mutable profile fields guarded by the expected version.
func (r *UserRepository) Update(ctx context.Context, u *domain.UserProfile, expectedVersion int64) error {
	const q = `
UPDATE user_profiles
SET first_name = $2, last_name = $3, phone_number = $4, thumbnail = $5,
    company = $6, occupation = $7, pending = $8,
    version = version + 1, updated_at = now()
WHERE user_id = $1 AND version = $9
RETURNING updated_at, version;`

	err := r.db.QueryRow(ctx, q,
		u.UserID, u.FirstName, u.LastName, u.PhoneNumber, u.Thumbnail,
		u.Company, u.Occupation, u.Pending, expectedVersion).
		Scan(&u.UpdatedAt, &u.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, u.UserID); getErr != nil {
				return getErr
			}
			return domain.ErrVersionConflict
		}
		return err
	}
	return nil
}

// SetRole changes a user's role (admin action).
func (r *UserRepository) SetRole(ctx context.Context, userID, role string) error {
	const q = `
UPDATE user_profiles
SET role = $2, pending = false, version = version + 1, updated_at = now()
WHERE user_id = $1;`
	tag, err := r.db.Exec(ctx, q, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddProject records a project ID on the user's profile.
func (r *UserRepository) AddProject(ctx context.Context, userID, projectID string) error {
	const q = `
UPDATE user_profiles
SET projects = array_append(projects, $2), version = version + 1, updated_at = now()
WHERE user_id = $1 AND NOT projects @> ARRAY[$2];`
	_, err := r.db.Exec(ctx, q, userID, projectID)
	return err
}

// RemoveProject drops a project ID from the user's profile.
func (r *UserRepository) RemoveProject(ctx context.Context, userID, projectID string) error {
	const q = `
UPDATE user_profiles
SET projects = array_remove(projects, $2), version = version + 1, updated_at = now()
WHERE user_id = $1;`
	_, err := r.db.Exec(ctx, q, userID, projectID)
	return err
}

// UpdateLastLogin stamps the last login time.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	const q = `UPDATE user_profiles SET last_login_at = now() WHERE user_id = $1;`
	_, err := r.db.Exec(ctx, q, userID)
	return err
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := row.Scan(
		&u.UserID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.Role, &u.Pending, &u.Collaborators, &u.Projects, &u.Thumbnail,
		&u.Company, &u.Occupation, &u.CreatedAt, &u.UpdatedAt,
		&u.LastLoginAt, &u.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
