// Package client implements the dashboard synchronization model: a state
// store, a REST gateway client, a realtime bridge, and per-page helpers that
// keep the active project consistent across views.
package client

import (
	"strings"
	"sync"

	authdomain "github.com/jazbelrose/mylg-backend/internal/auth/domain"
	projdomain "github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

// Snapshot is an immutable view of the dashboard state. Every read returns a
// fresh copy of the slices so callers can never mutate the store through a
// snapshot they hold.
type Snapshot struct {
	UserData         *authdomain.UserProfile
	Projects         []projdomain.Project
	SelectedProjects []string
	ActiveProject    *projdomain.Project
	AllUsers         []authdomain.UserProfile
	ProjectsError    bool

	IsAdmin    bool
	IsDesigner bool
	IsBuilder  bool
	IsVendor   bool
	IsClient   bool
}

// Store holds the shared dashboard state. It is an explicit dependency of the
// gateway, bridge, and view models rather than ambient package state, so tests
// and multiple sessions can each own one.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current state. Slices are copied; the caller's view
// never changes underneath it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(s.snap)
}

// SetUser replaces the signed-in profile and derives the role flags.
func (s *Store) SetUser(u *authdomain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.UserData = u
	next.IsAdmin, next.IsDesigner, next.IsBuilder, next.IsVendor, next.IsClient = false, false, false, false, false
	if u != nil {
		switch strings.ToLower(u.Role) {
		case authdomain.RoleAdmin:
			next.IsAdmin = true
		case authdomain.RoleDesigner:
			next.IsDesigner = true
		case authdomain.RoleBuilder:
			next.IsBuilder = true
		case authdomain.RoleVendor:
			next.IsVendor = true
		case authdomain.RoleClient:
			next.IsClient = true
		}
	}
	s.snap = next
}

// SetProjects replaces the project list and clears any previous fetch error.
func (s *Store) SetProjects(projects []projdomain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.Projects = append([]projdomain.Project(nil), projects...)
	next.ProjectsError = false
	// Drop the active project if it no longer exists upstream.
	if next.ActiveProject != nil {
		found := false
		for i := range next.Projects {
			if next.Projects[i].ProjectID == next.ActiveProject.ProjectID {
				found = true
				break
			}
		}
		if !found {
			next.ActiveProject = nil
		}
	}
	s.snap = next
}

// SetProjectsError marks the project list as failed to load. The stale list
// is kept so the UI can keep rendering while surfacing the error.
func (s *Store) SetProjectsError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.ProjectsError = true
	s.snap = next
}

// SetActiveProject replaces the active project wholesale. A nil project
// clears the selection.
func (s *Store) SetActiveProject(p *projdomain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	if p == nil {
		next.ActiveProject = nil
	} else {
		cp := cloneProject(*p)
		next.ActiveProject = &cp
	}
	s.snap = next
}

// SetAllUsers replaces the directory of user profiles.
func (s *Store) SetAllUsers(users []authdomain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.AllUsers = append([]authdomain.UserProfile(nil), users...)
	s.snap = next
}

// SelectProject adds a project id to the multi-select set. Duplicates are
// ignored.
func (s *Store) SelectProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.snap.SelectedProjects {
		if id == projectID {
			return
		}
	}
	next := s.snap
	next.SelectedProjects = append(append([]string(nil), s.snap.SelectedProjects...), projectID)
	s.snap = next
}

// DeselectProject removes a project id from the multi-select set.
func (s *Store) DeselectProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	next.SelectedProjects = filterIDs(s.snap.SelectedProjects, projectID)
	s.snap = next
}

// RemoveProject deletes a project from the local state optimistically, before
// the server confirms. It is filtered out of the project list, the selection
// set, and the active slot in one swap so no view observes a half-removed
// project.
func (s *Store) RemoveProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	kept := make([]projdomain.Project, 0, len(s.snap.Projects))
	for _, p := range s.snap.Projects {
		if p.ProjectID != projectID {
			kept = append(kept, p)
		}
	}
	next.Projects = kept
	next.SelectedProjects = filterIDs(s.snap.SelectedProjects, projectID)
	if next.ActiveProject != nil && next.ActiveProject.ProjectID == projectID {
		next.ActiveProject = nil
	}
	s.snap = next
}

// UpsertProject merges a single project into the list, replacing an existing
// entry with the same id or appending a new one. The active project is
// refreshed when it matches.
func (s *Store) UpsertProject(p projdomain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snap
	projects := append([]projdomain.Project(nil), s.snap.Projects...)
	replaced := false
	for i := range projects {
		if projects[i].ProjectID == p.ProjectID {
			projects[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, p)
	}
	next.Projects = projects
	if next.ActiveProject != nil && next.ActiveProject.ProjectID == p.ProjectID {
		cp := cloneProject(p)
		next.ActiveProject = &cp
	}
	s.snap = next
}

func filterIDs(ids []string, drop string) []string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			kept = append(kept, id)
		}
	}
	return kept
}

func cloneSnapshot(in Snapshot) Snapshot {
	out := in
	out.Projects = make([]projdomain.Project, len(in.Projects))
	for i := range in.Projects {
		out.Projects[i] = cloneProject(in.Projects[i])
	}
	out.SelectedProjects = append([]string(nil), in.SelectedProjects...)
	out.AllUsers = make([]authdomain.UserProfile, len(in.AllUsers))
	for i := range in.AllUsers {
		out.AllUsers[i] = cloneProfile(in.AllUsers[i])
	}
	if in.ActiveProject != nil {
		cp := cloneProject(*in.ActiveProject)
		out.ActiveProject = &cp
	}
	if in.UserData != nil {
		cp := cloneProfile(*in.UserData)
		out.UserData = &cp
	}
	return out
}

// cloneProject copies a project including its nested slices, so writes
// through one copy never reach another.
func cloneProject(p projdomain.Project) projdomain.Project {
	p.Tags = append([]string(nil), p.Tags...)
	p.Team = append([]projdomain.TeamMember(nil), p.Team...)
	p.Thumbnails = append([]string(nil), p.Thumbnails...)
	p.Uploads = append([]projdomain.Upload(nil), p.Uploads...)
	return p
}

func cloneProfile(u authdomain.UserProfile) authdomain.UserProfile {
	u.Collaborators = append([]string(nil), u.Collaborators...)
	u.Projects = append([]string(nil), u.Projects...)
	return u
}
