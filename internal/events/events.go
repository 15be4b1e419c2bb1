package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types emitted by the service layer.
const (
	TypeTaskCreated       = "task.created"
	TypeTaskUpdated       = "task.updated"
	TypeTaskStatusChanged = "task.status_changed"
	TypeTaskDeleted       = "task.deleted"
	TypeUserRegistered    = "user.registered"
	TypeUserDeleted       = "user.deleted"
)

// Event is a record of a committed state change.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants and doubles as the routing key
	Type string `json:"type"`

	// UserID is the user the change belongs to
	UserID int64 `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is the time the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, userID int64, payload any, at time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Payload:    payloadBytes,
		OccurredAt: at.UTC(),
	}, nil
}

// TaskPayload is the payload of task.* events.
type TaskPayload struct {
	TaskID    int64  `json:"task_id"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	Priority  string `json:"priority,omitempty"`
	OldStatus string `json:"old_status,omitempty"`
}

// UserPayload is the payload of user.* events.
type UserPayload struct {
	Email        string `json:"email,omitempty"`
	TasksRemoved int64  `json:"tasks_removed,omitempty"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event) error
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NoopEmitter) EmitEvent(context.Context, *Event) error { return nil }
