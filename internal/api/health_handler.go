package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

// NewHealthHandler creates a HealthHandler that pings db.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContext(r.Context()).Error("health check: database unreachable",
			slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusServiceUnavailable,
			HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}
