package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("EST", -5*60*60))

	event, err := NewEvent(TypeTaskStatusChanged, 4, TaskPayload{
		TaskID:    12,
		Status:    "DONE",
		OldStatus: "TODO",
	}, at)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskStatusChanged, event.Type)
	assert.Equal(t, int64(4), event.UserID)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.True(t, at.Equal(event.OccurredAt))

	var payload TaskPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, int64(12), payload.TaskID)
	assert.Equal(t, "DONE", payload.Status)
	assert.Equal(t, "TODO", payload.OldStatus)
	assert.JSONEq(t, `{"task_id":12,"status":"DONE","old_status":"TODO"}`, string(event.Payload))
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeTaskCreated, 1, make(chan int), time.Now())
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNoopEmitter(t *testing.T) {
	event, err := NewEvent(TypeUserDeleted, 1, UserPayload{TasksRemoved: 3}, time.Now())
	require.NoError(t, err)
	assert.NoError(t, NoopEmitter{}.EmitEvent(context.Background(), event))
}
