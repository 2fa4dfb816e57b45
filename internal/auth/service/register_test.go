package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/jazbelrose/mylg-backend/internal/auth"
	"github.com/jazbelrose/mylg-backend/internal/auth/domain"
)

type fakeIDP struct {
	signUpErr   error
	resendErr   error
	signUps     []string
	resends     []string
	confirmed   []string
	confirmCode string
}

func (f *fakeIDP) SignUp(_ context.Context, username, _ string) error {
	f.signUps = append(f.signUps, username)
	return f.signUpErr
}

func (f *fakeIDP) ResendConfirmationCode(_ context.Context, username string) error {
	f.resends = append(f.resends, username)
	return f.resendErr
}

func (f *fakeIDP) ConfirmSignUp(_ context.Context, username, code string) error {
	f.confirmed = append(f.confirmed, username)
	f.confirmCode = code
	return nil
}

func validRegisterReq() *RegisterRequest {
	return &RegisterRequest{
		FirstName:      "Jaz",
		LastName:       "Belrose",
		Email:          "Jaz@Example.com",
		PhoneNumber:    "3105551234",
		Password:       "Passw0rd!",
		RepeatPassword: "Passw0rd!",
	}
}

func TestAuthService_Register(t *testing.T) {
	t.Run("signs up a new user", func(t *testing.T) {
		idp := &fakeIDP{}
		svc := NewAuthService(nil, idp)

		res, err := svc.Register(context.Background(), validRegisterReq())
		require.NoError(t, err)
		assert.Equal(t, StateConfirm, res.State)
		assert.False(t, res.CodeResent)
		require.Len(t, idp.signUps, 1)
		assert.Equal(t, "jaz@example.com", idp.signUps[0])
	})

	t.Run("resends code when username exists", func(t *testing.T) {
		idp := &fakeIDP{signUpErr: domain.ErrUsernameExists}
		svc := NewAuthService(nil, idp)

		res, err := svc.Register(context.Background(), validRegisterReq())
		require.NoError(t, err)
		assert.Equal(t, StateConfirm, res.State)
		assert.True(t, res.CodeResent)
		require.Len(t, idp.resends, 1)
		assert.Equal(t, "jaz@example.com", idp.resends[0])
	})

	t.Run("propagates resend failure", func(t *testing.T) {
		idp := &fakeIDP{signUpErr: domain.ErrUsernameExists, resendErr: assert.AnError}
		svc := NewAuthService(nil, idp)

		_, err := svc.Register(context.Background(), validRegisterReq())
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("rejects mismatched passwords before calling the provider", func(t *testing.T) {
		idp := &fakeIDP{}
		svc := NewAuthService(nil, idp)

		req := validRegisterReq()
		req.RepeatPassword = "Different1!"
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		assert.Empty(t, idp.signUps)
	})

	t.Run("rejects weak passwords", func(t *testing.T) {
		idp := &fakeIDP{}
		svc := NewAuthService(nil, idp)

		req := validRegisterReq()
		req.Password = "abcdefg1"
		req.RepeatPassword = "abcdefg1"
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
		assert.Empty(t, idp.signUps)
	})

	t.Run("rejects invalid phone numbers", func(t *testing.T) {
		idp := &fakeIDP{}
		svc := NewAuthService(nil, idp)

		req := validRegisterReq()
		req.PhoneNumber = "310-555-1234"
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, auth.ErrInvalidPhone)
		assert.Empty(t, idp.signUps)
	})
}
