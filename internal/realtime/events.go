package realtime

import (
	"context"
	"encoding/json"
)

// Event types pushed to clients. The payload shape is opaque to the hub;
// clients react by refetching from the gateway.
const (
	EventProjectUpdated       = "project-updated"
	EventBudgetUpdated        = "budget-updated"
	EventCollaboratorsUpdated = "collaborators-updated"
	EventInviteUpdated        = "invite-updated"
	EventNotification         = "notification"
)

// Event is the server→client message envelope. Type is the discriminator.
type Event struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversationId,omitempty"`
	ProjectID      string          `json:"projectId,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// Publisher is what services use to push events; satisfied by *Hub.
type Publisher interface {
	Publish(ctx context.Context, conversationID string, ev Event) error
}

// ProjectConversation is the channel scoping events for one project.
func ProjectConversation(projectID string) string {
	return "project#" + projectID
}

// UserConversation is the personal channel for invite and notification events.
func UserConversation(userID string) string {
	return "user#" + userID
}
