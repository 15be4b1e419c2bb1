package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error     string              `json:"error"`
	Status    int                 `json:"status"`
	Path      string              `json:"path"`
	Timestamp time.Time           `json:"timestamp"`
	Details   []domain.FieldError `json:"details,omitempty"`
	TraceID   string              `json:"trace_id,omitempty"`
}

// ResponseOption customizes an error response.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
	details         []domain.FieldError
}

// WithElevatedLogLevel logs a 4xx response at WARN instead of DEBUG.
// Use for operational issues such as repeated authentication failures.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// WithDetails attaches per-field validation failures to the response body.
func WithDetails(details []domain.FieldError) ResponseOption {
	return func(opts *responseOptions) {
		opts.details = details
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// RespondWithError writes a JSON error response with the given status code and message.
func RespondWithError(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	opts ...ResponseOption,
) {
	RespondWithErrorAndLog(w, r, status, message, nil, opts...)
}

// RespondWithErrorAndLog writes a sanitized error response and logs the
// redacted cause. 5xx responses log at ERROR, 429 at WARN and everything
// else at DEBUG unless WithElevatedLogLevel is given.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	traceID := GetTraceID(r.Context())
	body := ErrorResponse{
		Error:     userMessage,
		Status:    status,
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC(),
		Details:   responseOpts.details,
		TraceID:   traceID,
	}

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		logLevel = slog.LevelError
	case status == http.StatusTooManyRequests:
		logLevel = slog.LevelWarn
	case responseOpts.elevateLogLevel && status >= http.StatusBadRequest:
		logLevel = slog.LevelWarn
	}

	logger.FromContext(r.Context()).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, body)
}
