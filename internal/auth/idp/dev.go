// Package idp holds identity-provider adapters. The production provider is
// external (Cognito); Dev is an in-memory stand-in for local development.
package idp

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jazbelrose/mylg-backend/internal/auth/domain"
)

// Dev is an in-memory identity provider for development and tests.
type Dev struct {
	mu    sync.Mutex
	users map[string]bool // username -> confirmed
}

func NewDev() *Dev {
	return &Dev{users: make(map[string]bool)}
}

func (d *Dev) SignUp(_ context.Context, username, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[username]; ok {
		return domain.ErrUsernameExists
	}
	d.users[username] = false
	log.Printf("[idp] signed up %s (dev provider, code is 000000)", username)
	return nil
}

func (d *Dev) ResendConfirmationCode(_ context.Context, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[username]; !ok {
		return errors.New("unknown username")
	}
	log.Printf("[idp] resent confirmation code to %s (dev provider)", username)
	return nil
}

func (d *Dev) ConfirmSignUp(_ context.Context, username, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[username]; !ok {
		return errors.New("unknown username")
	}
	if code == "" {
		return errors.New("code required")
	}
	d.users[username] = true
	return nil
}
