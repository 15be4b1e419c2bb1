package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// AuditLogHandler writes every event to the structured log.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler. A nil logger falls back to slog.Default.
func NewAuditLogHandler(l *slog.Logger) *AuditLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditLogHandler{logger: l.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("audit event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("user_id", event.UserID),
		slog.String("payload", string(event.Payload)),
		slog.Time("occurred_at", event.OccurredAt))
	return nil
}
