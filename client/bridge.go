package client

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	collabdomain "github.com/jazbelrose/mylg-backend/internal/collab/domain"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Bridge maintains the websocket connection to the realtime endpoint. It
// scopes the subscription to the active project and turns pushed events into
// gateway refetches, so the store converges on server state without polling.
type Bridge struct {
	url     string
	store   *Store
	gateway *Gateway
	budgets *BudgetCache

	// OnNotification, when set, receives notification events addressed to
	// this user.
	OnNotification func(ev realtime.Event)
	// OnInvites, when set, receives the refreshed incoming invite list after
	// an invite or collaborator event.
	OnInvites func(invites []collabdomain.CollabInvite)

	mu           sync.Mutex
	ws           *websocket.Conn
	conversation string
}

func NewBridge(url string, store *Store, gateway *Gateway, budgets *BudgetCache) *Bridge {
	return &Bridge{
		url:     url,
		store:   store,
		gateway: gateway,
		budgets: budgets,
	}
}

// SetActiveProject re-scopes the subscription to the given project's
// conversation. Safe to call while disconnected; the conversation is sent on
// the next connect.
func (b *Bridge) SetActiveProject(projectID string) {
	conversation := ""
	if projectID != "" {
		conversation = realtime.ProjectConversation(projectID)
	}

	b.mu.Lock()
	b.conversation = conversation
	ws := b.ws
	b.mu.Unlock()

	if ws != nil && conversation != "" {
		if err := b.sendSetConversation(ws, conversation); err != nil {
			log.Printf("bridge: set conversation: %v", err)
		}
	}
}

// Run dials the realtime endpoint and keeps the connection alive until the
// context is cancelled, reconnecting with capped exponential backoff.
func (b *Bridge) Run(ctx context.Context) {
	backoff := reconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return
		}

		ws, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			log.Printf("bridge: dial: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > reconnectMax {
				backoff = reconnectMax
			}
			continue
		}
		backoff = reconnectMin

		b.mu.Lock()
		b.ws = ws
		conversation := b.conversation
		b.mu.Unlock()

		if conversation != "" {
			if err := b.sendSetConversation(ws, conversation); err != nil {
				log.Printf("bridge: set conversation: %v", err)
			}
		}

		b.readLoop(ctx, ws)

		b.mu.Lock()
		b.ws = nil
		b.mu.Unlock()
		ws.Close()
	}
}

func (b *Bridge) sendSetConversation(ws *websocket.Conn, conversation string) error {
	frame := map[string]string{
		"action":         "setActiveConversation",
		"conversationId": conversation,
	}
	ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteJSON(frame)
}

func (b *Bridge) readLoop(ctx context.Context, ws *websocket.Conn) {
	// The watchdog must not outlive this connection, or every reconnect
	// would park one more goroutine until the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("bridge: read: %v", err)
			}
			return
		}

		var ev realtime.Event
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Type == "" {
			// Unknown frames are dropped, never fatal.
			log.Printf("bridge: skipping malformed frame: %.120s", raw)
			continue
		}
		b.handleEvent(ctx, ev)
	}
}

func (b *Bridge) handleEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventProjectUpdated:
		// The server confirmed a mutation; one details fetch brings the
		// store up to date.
		snap := b.store.Snapshot()
		if snap.ActiveProject != nil && snap.ActiveProject.ProjectID == ev.ProjectID {
			if _, err := b.gateway.FetchProjectDetails(ctx, ev.ProjectID); err != nil {
				log.Printf("bridge: refetch project %s: %v", ev.ProjectID, err)
			}
			return
		}
		if _, err := b.gateway.FetchProjects(ctx); err != nil {
			log.Printf("bridge: refetch projects: %v", err)
		}

	case realtime.EventBudgetUpdated:
		if b.budgets != nil && ev.ProjectID != "" {
			b.budgets.Invalidate(ev.ProjectID)
		}

	case realtime.EventCollaboratorsUpdated:
		if _, err := b.gateway.RefreshUsers(ctx); err != nil {
			log.Printf("bridge: refresh users: %v", err)
		}
		b.refreshInvites(ctx)

	case realtime.EventInviteUpdated:
		b.refreshInvites(ctx)

	case realtime.EventNotification:
		if b.OnNotification != nil {
			b.OnNotification(ev)
		}

	default:
		log.Printf("bridge: ignoring event type %q", ev.Type)
	}
}

func (b *Bridge) refreshInvites(ctx context.Context) {
	invites, err := b.gateway.IncomingInvites(ctx)
	if err != nil {
		log.Printf("bridge: refresh invites: %v", err)
		return
	}
	if b.OnInvites != nil {
		b.OnInvites(invites)
	}
}
