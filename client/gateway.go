package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	authdomain "github.com/jazbelrose/mylg-backend/internal/auth/domain"
	budgetdomain "github.com/jazbelrose/mylg-backend/internal/budgets/domain"
	collabdomain "github.com/jazbelrose/mylg-backend/internal/collab/domain"
	projdomain "github.com/jazbelrose/mylg-backend/internal/projects/domain"
)

// APIError is a non-2xx gateway response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %d %s", e.Status, e.Message)
}

// IsConflict reports whether err is a 409 from the gateway, meaning the
// record changed since the caller last read it.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// ProjectUpdate is the partial-update body for a project PUT. Nil fields are
// left untouched; Version must be the version the caller last saw.
type ProjectUpdate struct {
	Title       *string                `json:"title,omitempty"`
	Status      *string                `json:"status,omitempty"`
	Description *string                `json:"description,omitempty"`
	Location    *string                `json:"location,omitempty"`
	Address     *string                `json:"address,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Budget      *projdomain.Budget     `json:"budget,omitempty"`
	Finishline  *time.Time             `json:"finishline,omitempty"`
	Version     int64                  `json:"version"`
}

// Gateway is the REST client for the dashboard API. Successful fetches are
// written into the store so every consumer sees the same state.
type Gateway struct {
	base  string
	token string
	httpc *http.Client
	store *Store
}

func NewGateway(baseURL, token string, store *Store) *Gateway {
	return &Gateway{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		httpc: &http.Client{Timeout: 15 * time.Second},
		store: store,
	}
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchProjects loads the caller's project list into the store. On failure
// the store keeps the previous list and raises ProjectsError.
func (g *Gateway) FetchProjects(ctx context.Context) ([]projdomain.Project, error) {
	var out struct {
		Projects []projdomain.Project `json:"projects"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out); err != nil {
		g.store.SetProjectsError()
		return nil, err
	}
	g.store.SetProjects(out.Projects)
	return out.Projects, nil
}

// FetchProjectDetails loads one project and replaces the active project
// wholesale. Fetching the same id twice without an intervening mutation
// leaves the store unchanged.
func (g *Gateway) FetchProjectDetails(ctx context.Context, projectID string) (*projdomain.Project, error) {
	var out struct {
		Project *projdomain.Project `json:"project"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/projects/"+projectID, nil, &out); err != nil {
		return nil, err
	}
	g.store.SetActiveProject(out.Project)
	return out.Project, nil
}

// FetchProjectBySlug resolves a project by its URL slug.
func (g *Gateway) FetchProjectBySlug(ctx context.Context, slug string) (*projdomain.Project, error) {
	var out struct {
		Project *projdomain.Project `json:"project"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/projects/slug/"+slug, nil, &out); err != nil {
		return nil, err
	}
	g.store.SetActiveProject(out.Project)
	return out.Project, nil
}

// RefreshUsers reloads the user directory into the store.
func (g *Gateway) RefreshUsers(ctx context.Context) ([]authdomain.UserProfile, error) {
	var out struct {
		Users []authdomain.UserProfile `json:"users"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/users", nil, &out); err != nil {
		return nil, err
	}
	g.store.SetAllUsers(out.Users)
	return out.Users, nil
}

// FetchMe loads the signed-in profile.
func (g *Gateway) FetchMe(ctx context.Context) (*authdomain.UserProfile, error) {
	var out struct {
		User *authdomain.UserProfile `json:"user"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &out); err != nil {
		return nil, err
	}
	g.store.SetUser(out.User)
	return out.User, nil
}

// UpdateProject sends a partial update. On success the returned project,
// carrying the server's new version, replaces the local copy. A 409 means
// someone else changed it first; callers should refetch and retry.
func (g *Gateway) UpdateProject(ctx context.Context, projectID string, upd ProjectUpdate) (*projdomain.Project, error) {
	var out struct {
		Project *projdomain.Project `json:"project"`
	}
	if err := g.do(ctx, http.MethodPut, "/api/v1/projects/"+projectID, upd, &out); err != nil {
		return nil, err
	}
	if out.Project != nil {
		g.store.UpsertProject(*out.Project)
	}
	return out.Project, nil
}

// DeleteProject removes the project from local state immediately, then
// confirms with the server. If the server refuses, the list is refetched so
// the optimistic removal is rolled back.
func (g *Gateway) DeleteProject(ctx context.Context, projectID string) error {
	g.store.RemoveProject(projectID)
	if err := g.do(ctx, http.MethodDelete, "/api/v1/projects/"+projectID, nil, nil); err != nil {
		if _, listErr := g.FetchProjects(ctx); listErr != nil {
			return fmt.Errorf("delete failed (%w) and list refresh failed: %v", err, listErr)
		}
		return err
	}
	return nil
}

// SendInvite creates a pending collaborator invite.
func (g *Gateway) SendInvite(ctx context.Context, toUserID string) (*collabdomain.CollabInvite, error) {
	var out struct {
		Invite *collabdomain.CollabInvite `json:"invite"`
	}
	body := map[string]string{"toUserId": toUserID}
	if err := g.do(ctx, http.MethodPost, "/api/v1/invites", body, &out); err != nil {
		return nil, err
	}
	return out.Invite, nil
}

// IncomingInvites lists pending invites addressed to the caller.
func (g *Gateway) IncomingInvites(ctx context.Context) ([]collabdomain.CollabInvite, error) {
	var out struct {
		Invites []collabdomain.CollabInvite `json:"invites"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/invites/incoming", nil, &out); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

// OutgoingInvites lists pending invites the caller has sent.
func (g *Gateway) OutgoingInvites(ctx context.Context) ([]collabdomain.CollabInvite, error) {
	var out struct {
		Invites []collabdomain.CollabInvite `json:"invites"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/invites/outgoing", nil, &out); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

func (g *Gateway) inviteTransition(ctx context.Context, inviteID, action string) (*collabdomain.CollabInvite, error) {
	var out struct {
		Invite *collabdomain.CollabInvite `json:"invite"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/v1/invites/"+inviteID+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return out.Invite, nil
}

func (g *Gateway) AcceptInvite(ctx context.Context, inviteID string) (*collabdomain.CollabInvite, error) {
	return g.inviteTransition(ctx, inviteID, "accept")
}

func (g *Gateway) DeclineInvite(ctx context.Context, inviteID string) (*collabdomain.CollabInvite, error) {
	return g.inviteTransition(ctx, inviteID, "decline")
}

func (g *Gateway) CancelInvite(ctx context.Context, inviteID string) (*collabdomain.CollabInvite, error) {
	return g.inviteTransition(ctx, inviteID, "cancel")
}

// FetchBudget loads a project's budget header and line items.
func (g *Gateway) FetchBudget(ctx context.Context, projectID string) (*budgetdomain.BudgetHeader, []budgetdomain.BudgetItem, error) {
	var out struct {
		Header *budgetdomain.BudgetHeader `json:"budgetHeader"`
		Items  []budgetdomain.BudgetItem  `json:"budgetItems"`
	}
	if err := g.do(ctx, http.MethodGet, "/api/v1/projects/"+projectID+"/budget", nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Header, out.Items, nil
}

// CreateBudgetItem adds a line item; the server assigns the element key.
func (g *Gateway) CreateBudgetItem(ctx context.Context, projectID string, item budgetdomain.BudgetItem) (*budgetdomain.BudgetItem, error) {
	var out struct {
		Item *budgetdomain.BudgetItem `json:"item"`
	}
	if err := g.do(ctx, http.MethodPost, "/api/v1/projects/"+projectID+"/budget/items", item, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

// DeleteBudgetItem removes a line item by element key.
func (g *Gateway) DeleteBudgetItem(ctx context.Context, projectID, elementKey string) error {
	return g.do(ctx, http.MethodDelete, "/api/v1/projects/"+projectID+"/budget/items/"+elementKey, nil, nil)
}

// NewBudgetRevision bumps the budget revision. The caller passes the
// revision it saw; a 409 means another client already bumped it.
func (g *Gateway) NewBudgetRevision(ctx context.Context, projectID string, fromRevision int) (*budgetdomain.BudgetHeader, error) {
	var out struct {
		Header *budgetdomain.BudgetHeader `json:"budgetHeader"`
	}
	body := map[string]int{"revision": fromRevision}
	if err := g.do(ctx, http.MethodPost, "/api/v1/projects/"+projectID+"/budget/revisions", body, &out); err != nil {
		return nil, err
	}
	return out.Header, nil
}
