package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

type fakeService struct {
	projects  []domain.Project
	updateErr error
	lastList  struct {
		userID  string
		isAdmin bool
	}
}

func (f *fakeService) List(_ context.Context, userID string, isAdmin bool) ([]domain.Project, error) {
	f.lastList.userID = userID
	f.lastList.isAdmin = isAdmin
	return f.projects, nil
}

func (f *fakeService) Get(_ context.Context, _ string, _ bool, projectID string) (*domain.Project, error) {
	for i := range f.projects {
		if f.projects[i].ProjectID == projectID {
			return &f.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeService) GetBySlug(_ context.Context, _ string, _ bool, slug string) (*domain.Project, error) {
	for i := range f.projects {
		if f.projects[i].Slug == slug {
			return &f.projects[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeService) Create(_ context.Context, ownerID, title string, budget domain.Budget) (*domain.Project, error) {
	p := domain.Project{ProjectID: "new", Title: title, Slug: domain.Slugify(title), Budget: budget}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeService) Update(_ context.Context, _ string, _ bool, projectID string, _ *domain.UpdateProjectRequest) (*domain.Project, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Get(context.Background(), "", false, projectID)
}

func (f *fakeService) Delete(_ context.Context, projectID string) (bool, error) {
	for _, p := range f.projects {
		if p.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeService) AddTeamMember(_ context.Context, _, _, _ string) error { return nil }
func (f *fakeService) RemoveTeamMember(_ context.Context, _, _ string) error { return nil }

func setupProjectRouter(svc Service, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("role", role)
	})
	New(svc).Register(r.Group("/projects"))
	return r
}

func TestProjectHandler_List(t *testing.T) {
	svc := &fakeService{projects: []domain.Project{{ProjectID: "p1", Slug: "loft"}}}
	r := setupProjectRouter(svc, "admin")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
	assert.Equal(t, "u1", svc.lastList.userID)
	assert.True(t, svc.lastList.isAdmin)
}

func TestProjectHandler_GetBySlug(t *testing.T) {
	svc := &fakeService{projects: []domain.Project{{ProjectID: "p1", Slug: "loft"}}}
	r := setupProjectRouter(svc, "client")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/slug/loft", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"projectId":"p1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects/slug/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_Update(t *testing.T) {
	t.Run("version conflict maps to 409", func(t *testing.T) {
		svc := &fakeService{updateErr: domain.ErrVersionConflict}
		r := setupProjectRouter(svc, "client")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/projects/p1", strings.NewReader(`{"version":3}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "changed since last read")
	})

	t.Run("forbidden maps to 403", func(t *testing.T) {
		svc := &fakeService{updateErr: domain.ErrForbidden}
		r := setupProjectRouter(svc, "client")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/projects/p1", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestProjectHandler_AdminGates(t *testing.T) {
	svc := &fakeService{projects: []domain.Project{{ProjectID: "p1"}}}

	t.Run("non-admin cannot delete", func(t *testing.T) {
		r := setupProjectRouter(svc, "designer")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/projects/p1", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin can delete", func(t *testing.T) {
		r := setupProjectRouter(svc, "admin")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/projects/p1", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("team changes require admin", func(t *testing.T) {
		r := setupProjectRouter(svc, "builder")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/projects/p1/team", strings.NewReader(`{"userId":"u2"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestProjectHandler_Create(t *testing.T) {
	svc := &fakeService{}
	r := setupProjectRouter(svc, "admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"title":"Loft Renovation"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"loft-renovation"`)

	t.Run("a blank title is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{"title":"  "}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
