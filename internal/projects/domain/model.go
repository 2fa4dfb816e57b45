package domain

import "time"

// Project is the canonical project record shared between the repository and
// HTTP layers. ProjectID is immutable and unique; Team membership decides
// visibility for non-admin roles.
type Project struct {
	ProjectID   string       `json:"projectId"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Status      string       `json:"status"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	Address     string       `json:"address,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Budget      Budget       `json:"budget"`
	Team        []TeamMember `json:"team"`
	Thumbnails  []string     `json:"thumbnails,omitempty"`
	Uploads     []Upload     `json:"uploads,omitempty"`
	Finishline  *time.Time   `json:"finishline,omitempty"`
	DateCreated time.Time    `json:"dateCreated"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	// Version is bumped on every successful update; stale writers are
	// rejected with ErrVersionConflict.
	Version int64 `json:"version"`
}

// Budget is the summary carried on the project itself; line items live in
// the budgets package.
type Budget struct {
	Date  string  `json:"date,omitempty"`
	Total float64 `json:"total"`
}

type TeamMember struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
}

type Upload struct {
	FileName   string    `json:"fileName"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// HasMember reports whether userID is on the project team.
func (p *Project) HasMember(userID string) bool {
	for _, m := range p.Team {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// UpdateProjectRequest carries a partial update; nil fields are left alone.
// ExpectedVersion is the version the caller last saw.
type UpdateProjectRequest struct {
	Title           *string
	Status          *string
	Description     *string
	Location        *string
	Address         *string
	Tags            []string
	Budget          *Budget
	Finishline      *time.Time
	ExpectedVersion int64
}
