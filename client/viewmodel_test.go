package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projdomain "github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

func viewModelFixture(t *testing.T, serve map[string]projdomain.Project) (*ViewModel, *Store) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/v1/projects/"):]
		p, ok := serve[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "project not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "project": p})
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	return NewViewModel(store, NewGateway(srv.URL, "", store)), store
}

func TestViewModel_Sync(t *testing.T) {
	vm, store := viewModelFixture(t, nil)

	p := proj("p1", "loft")
	store.SetActiveProject(&p)
	vm.Sync()
	require.NotNil(t, vm.Project())
	assert.Equal(t, "p1", vm.Project().ProjectID)

	// Upstream change overwrites the page copy unconditionally.
	local := vm.Project()
	local.Title = "local edit"
	changed := proj("p1", "loft")
	changed.Title = "upstream"
	store.SetActiveProject(&changed)
	vm.Sync()
	assert.Equal(t, "upstream", vm.Project().Title)
}

func TestViewModel_ResolveSlug(t *testing.T) {
	t.Run("matching slug syncs in place", func(t *testing.T) {
		vm, store := viewModelFixture(t, nil)
		p := proj("p1", "loft")
		store.SetActiveProject(&p)

		canonical, err := vm.ResolveSlug(context.Background(), "loft")
		require.NoError(t, err)
		assert.Equal(t, "loft", canonical)
		assert.Equal(t, "p1", vm.Project().ProjectID)
	})

	t.Run("slug from the loaded list activates that project", func(t *testing.T) {
		villa := proj("p2", "villa")
		vm, store := viewModelFixture(t, map[string]projdomain.Project{"p2": villa})
		active := proj("p1", "loft")
		store.SetActiveProject(&active)
		store.SetProjects([]projdomain.Project{proj("p1", "loft"), villa})

		canonical, err := vm.ResolveSlug(context.Background(), "villa")
		require.NoError(t, err)
		assert.Equal(t, "villa", canonical)
		assert.Equal(t, "p2", store.Snapshot().ActiveProject.ProjectID)
		assert.Equal(t, "p2", vm.Project().ProjectID)
	})

	t.Run("unknown slug redirects to the active project's canonical slug", func(t *testing.T) {
		vm, store := viewModelFixture(t, nil)
		p := proj("p1", "loft")
		store.SetProjects([]projdomain.Project{p})
		store.SetActiveProject(&p)

		canonical, err := vm.ResolveSlug(context.Background(), "stale-slug")
		require.NoError(t, err)
		assert.Equal(t, "loft", canonical)
	})

	t.Run("unknown slug with no active project fails", func(t *testing.T) {
		vm, _ := viewModelFixture(t, nil)
		_, err := vm.ResolveSlug(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrUnknownSlug)
	})
}
