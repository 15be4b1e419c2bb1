package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasker-api/internal/events"
)

// RecordingEmitter implements events.EventEmitter by keeping every event.
type RecordingEmitter struct {
	Err error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter
func (r *RecordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Types returns the types of the recorded events in emission order.
func (r *RecordingEmitter) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Last returns the most recent event, or nil.
func (r *RecordingEmitter) Last() *events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}
