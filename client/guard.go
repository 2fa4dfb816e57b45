package client

import "sync"

// NavigationGuard tracks unsaved per-page edits and gates navigation on an
// explicit confirmation callback. Pages mark themselves dirty while editing
// and clean after a successful save.
type NavigationGuard struct {
	// Confirm is asked whether to abandon unsaved changes. Nil means
	// navigation away from a dirty page is refused.
	Confirm func() bool

	mu    sync.Mutex
	dirty map[string]struct{}
}

func NewNavigationGuard() *NavigationGuard {
	return &NavigationGuard{dirty: make(map[string]struct{})}
}

// MarkDirty records that the named page has unsaved changes.
func (g *NavigationGuard) MarkDirty(page string) {
	g.mu.Lock()
	g.dirty[page] = struct{}{}
	g.mu.Unlock()
}

// MarkClean clears the named page's unsaved state.
func (g *NavigationGuard) MarkClean(page string) {
	g.mu.Lock()
	delete(g.dirty, page)
	g.mu.Unlock()
}

// HasUnsaved reports whether any page holds unsaved changes.
func (g *NavigationGuard) HasUnsaved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.dirty) > 0
}

// AllowNavigation reports whether it is safe to leave the current view. With
// no unsaved changes it always allows; otherwise it defers to Confirm, and a
// confirmed departure discards the dirty state.
func (g *NavigationGuard) AllowNavigation() bool {
	g.mu.Lock()
	pending := len(g.dirty) > 0
	g.mu.Unlock()

	if !pending {
		return true
	}
	if g.Confirm == nil || !g.Confirm() {
		return false
	}

	g.mu.Lock()
	g.dirty = make(map[string]struct{})
	g.mu.Unlock()
	return true
}
