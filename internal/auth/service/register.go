package service

import (
	"context"
	"errors"
	"log"
	"strings"

	auth "github.com/jazbelrose/mylg-backend/internal/auth"
	"github.com/jazbelrose/mylg-backend/internal/auth/domain"
)

// IdentityProvider abstracts the external sign-up service (Cognito in
// production). Only the operations the registration flow needs.
type IdentityProvider interface {
	SignUp(ctx context.Context, username, password string) error
	ResendConfirmationCode(ctx context.Context, username string) error
	ConfirmSignUp(ctx context.Context, username, code string) error
}

// Registration states returned to the caller.
const (
	StateConfirm = "confirm"
)

type RegisterRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
}

type RegisterResult struct {
	// State is "confirm" after a successful sign-up or a resent code; the
	// caller should switch to the verification view.
	State string `json:"state"`
	// CodeResent is true when the username already existed and the
	// verification code was re-sent instead.
	CodeResent bool `json:"codeResent"`
}

var ErrPasswordMismatch = errors.New("passwords do not match")

// Register validates the form and signs the user up with the identity
// provider. An already-existing username is not an error for the user: the
// verification code is re-sent and the flow continues to confirmation.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	if req.Password != req.RepeatPassword {
		return nil, ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := auth.ValidatePhoneNumber(req.PhoneNumber); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.idp.SignUp(ctx, username, req.Password); err != nil {
		if errors.Is(err, domain.ErrUsernameExists) {
			// Bespoke recovery path: the account exists but may be
			// unverified, so re-send the code and move to confirmation.
			if resendErr := s.idp.ResendConfirmationCode(ctx, username); resendErr != nil {
				return nil, resendErr
			}
			log.Printf("[auth] username exists, resent confirmation code username=%s", username)
			return &RegisterResult{State: StateConfirm, CodeResent: true}, nil
		}
		return nil, err
	}

	return &RegisterResult{State: StateConfirm}, nil
}

// Confirm completes sign-up with the emailed verification code and creates
// the pending profile the admin later assigns a role to.
func (s *AuthService) Confirm(ctx context.Context, username, code string, profile *domain.UserProfile) error {
	if err := s.idp.ConfirmSignUp(ctx, username, code); err != nil {
		return err
	}
	profile.Email = username
	profile.Pending = true
	if profile.Role == "" {
		profile.Role = domain.RoleClient
	}
	if err := s.userRepo.Create(ctx, profile); err != nil && !errors.Is(err, domain.ErrUsernameExists) {
		return err
	}
	return nil
}
