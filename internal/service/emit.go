package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// emitEvent publishes a lifecycle event. Failures are logged and swallowed
// because the mutation has already committed.
func emitEvent(
	ctx context.Context,
	emitter events.EventEmitter,
	fallback *slog.Logger,
	eventType string,
	userID int64,
	payload any,
	at time.Time,
) {
	if emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, fallback)

	event, err := events.NewEvent(eventType, userID, payload, at)
	if err != nil {
		log.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}

	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()))
	}
}
