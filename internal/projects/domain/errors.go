package domain

import "errors"

var (
	ErrNotFound        = errors.New("project not found")
	ErrVersionConflict = errors.New("project version conflict")
	ErrForbidden       = errors.New("not a member of this project")
)
