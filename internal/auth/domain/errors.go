package domain

import "errors"

var (
	ErrNotFound        = errors.New("user not found")
	ErrVersionConflict = errors.New("profile version conflict")
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidRole     = errors.New("invalid role")
)
