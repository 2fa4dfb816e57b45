package service

import (
	"context"
	"strings"

	"github.com/jazbelrose/mylg-backend/internal/auth/domain"
	"github.com/jazbelrose/mylg-backend/internal/auth/repository"
)

type AuthService struct {
	userRepo *repository.UserRepository
	idp      IdentityProvider
}

func NewAuthService(userRepo *repository.UserRepository, idp IdentityProvider) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		idp:      idp,
	}
}

// GetUser retrieves a profile by user ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers returns all profiles (admin view and display-data refresh).
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	return s.userRepo.List(ctx)
}

// UpdateProfile merges the provided fields into the stored profile. The
// caller's last-seen version is checked so stale writers get
// ErrVersionConflict instead of silently overwriting each other.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Update fields if provided
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Thumbnail != nil {
		user.Thumbnail = *req.Thumbnail
	}
	if req.Company != nil {
		user.Company = *req.Company
	}
	if req.Occupation != nil {
		user.Occupation = *req.Occupation
	}

	if err := s.userRepo.Update(ctx, user, req.ExpectedVersion); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole changes a user's role and clears the pending flag (admin action).
func (s *AuthService) SetRole(ctx context.Context, userID, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	return s.userRepo.SetRole(ctx, userID, strings.ToLower(role))
}

// RecordLogin updates the last login timestamp.
func (s *AuthService) RecordLogin(ctx context.Context, userID string) error {
	return s.userRepo.UpdateLastLogin(ctx, userID)
}
