package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// InMemoryEventEmitter dispatches each event synchronously to every
// registered handler, in registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(l *slog.Logger) *InMemoryEventEmitter {
	if l == nil {
		l = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: l.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler subscribes handler to all subsequent events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("registered event handler",
		slog.String("handler", fmt.Sprintf("%T", handler)),
		slog.Int("handler_count", n))
}

// EmitEvent delivers event to every handler even when some fail, and returns
// the first failure.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("user_id", event.UserID))

	var firstErr error
	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("event handler failed",
				slog.String("handler", fmt.Sprintf("%T", handler)),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
