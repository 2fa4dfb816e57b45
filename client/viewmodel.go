package client

import (
	"context"
	"errors"
	"sync"

	projdomain "github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

// ErrUnknownSlug means a slug matched neither the active project nor any
// project in the loaded list.
var ErrUnknownSlug = errors.New("client: unknown project slug")

// ViewModel is a per-page mirror of the active project. Upstream changes
// overwrite the local copy unconditionally; there is no merge.
type ViewModel struct {
	store   *Store
	gateway *Gateway

	mu    sync.RWMutex
	local *projdomain.Project
}

func NewViewModel(store *Store, gateway *Gateway) *ViewModel {
	return &ViewModel{store: store, gateway: gateway}
}

// Project returns the page's current copy of the active project.
func (vm *ViewModel) Project() *projdomain.Project {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if vm.local == nil {
		return nil
	}
	cp := *vm.local
	return &cp
}

// Sync pulls the store's active project into the page copy. Any local edits
// are discarded; the upstream value wins.
func (vm *ViewModel) Sync() {
	snap := vm.store.Snapshot()
	vm.mu.Lock()
	vm.local = snap.ActiveProject
	vm.mu.Unlock()
}

// ResolveSlug reconciles the page URL with the active project. When the slug
// already matches, the active project is synced into the page. When it names
// a different project from the loaded list, that project's details are
// fetched and it becomes active. Otherwise the caller is told to redirect to
// the canonical slug of the current active project; with no active project
// either, ErrUnknownSlug is returned.
func (vm *ViewModel) ResolveSlug(ctx context.Context, slug string) (canonical string, err error) {
	snap := vm.store.Snapshot()

	if snap.ActiveProject != nil && snap.ActiveProject.Slug == slug {
		vm.Sync()
		return slug, nil
	}

	for i := range snap.Projects {
		if snap.Projects[i].Slug == slug {
			if _, err := vm.gateway.FetchProjectDetails(ctx, snap.Projects[i].ProjectID); err != nil {
				return "", err
			}
			vm.Sync()
			return slug, nil
		}
	}

	if snap.ActiveProject != nil {
		vm.Sync()
		return snap.ActiveProject.Slug, nil
	}

	return "", ErrUnknownSlug
}
