package domain

import (
	"strings"
	"time"
)

// Roles are flat strings compared case-insensitively.
const (
	RoleAdmin    = "admin"
	RoleDesigner = "designer"
	RoleBuilder  = "builder"
	RoleVendor   = "vendor"
	RoleClient   = "client"
)

// UserProfile is the dashboard-facing user record. Collaborators and
// Projects hold IDs, not embedded objects.
type UserProfile struct {
	UserID        string     `json:"userId"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName,omitempty"`
	LastName      string     `json:"lastName,omitempty"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	Role          string     `json:"role"`
	Pending       bool       `json:"pending"`
	Collaborators []string   `json:"collaborators"`
	Projects      []string   `json:"projects"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	Company       string     `json:"company,omitempty"`
	Occupation    string     `json:"occupation,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	// Version guards read-modify-write profile updates.
	Version int64 `json:"version"`
}

// HasRole compares roles case-insensitively.
func (u *UserProfile) HasRole(role string) bool {
	return strings.EqualFold(u.Role, role)
}

func (u *UserProfile) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// HasCollaborator reports whether the given user is in the collaborators list.
func (u *UserProfile) HasCollaborator(userID string) bool {
	for _, id := range u.Collaborators {
		if id == userID {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is one of the known role strings.
func ValidRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleAdmin, RoleDesigner, RoleBuilder, RoleVendor, RoleClient:
		return true
	}
	return false
}

// UpdateProfileRequest carries a partial profile update; nil fields are
// left alone. ExpectedVersion is the version the caller last saw.
type UpdateProfileRequest struct {
	FirstName       *string
	LastName        *string
	PhoneNumber     *string
	Thumbnail       *string
	Company         *string
	Occupation      *string
	ExpectedVersion int64
}
