package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "rt:"

// Hub fans typed events out to websocket connections scoped to a
// conversation. Delivery goes through Redis pub/sub so every API instance
// sees every event, mirroring how budget run events are published.
type Hub struct {
	client *redis.Client

	mu   sync.RWMutex
	subs map[string]map[*conn]struct{}
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{
		client: client,
		subs:   make(map[string]map[*conn]struct{}),
	}
}

// Publish sends an event to every connection subscribed to the conversation.
func (h *Hub) Publish(ctx context.Context, conversationID string, ev Event) error {
	ev.ConversationID = conversationID
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := h.client.Publish(ctx, channelPrefix+conversationID, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run consumes the Redis event stream and dispatches to local connections.
// Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	sub := h.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			conversationID := strings.TrimPrefix(msg.Channel, channelPrefix)
			h.dispatch(conversationID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) dispatch(conversationID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[conversationID] {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop the frame rather than block the hub.
			log.Printf("[realtime] dropping frame for slow connection conversation=%s", conversationID)
		}
	}
}

func (h *Hub) subscribe(c *conn, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.conversation != "" {
		if set, ok := h.subs[c.conversation]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.subs, c.conversation)
			}
		}
	}

	c.conversation = conversationID
	if conversationID == "" {
		return
	}
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*conn]struct{})
	}
	h.subs[conversationID][c] = struct{}{}
}

// addPersonal pins a connection to its user channel for the socket's
// lifetime, independent of the active conversation.
func (h *Hub) addPersonal(c *conn, conversationID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.personal = conversationID
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*conn]struct{})
	}
	h.subs[conversationID][c] = struct{}{}
}

func (h *Hub) unregister(c *conn) {
	h.subscribe(c, "")
	if c.personal != "" {
		h.mu.Lock()
		if set, ok := h.subs[c.personal]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.subs, c.personal)
			}
		}
		h.mu.Unlock()
	}
	close(c.send)
}
