package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// decodeAndValidate decodes the JSON body into v and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// queryUserID extracts the acting user from the userId query parameter.
func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get(middleware.UserIDParam)
	if raw == "" {
		HandleAPIError(w, r, domain.NewValidationError(middleware.UserIDParam, "must not be blank"), "")
		return 0, false
	}
	id, err := shared.PositiveInt64(middleware.UserIDParam, raw)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// pathID extracts a positive int64 from the named chi URL parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := shared.PositiveInt64(name, chi.URLParam(r, name))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// parseStatus reads a status case-insensitively from raw.
func parseStatus(w http.ResponseWriter, r *http.Request, raw string) (domain.TaskStatus, bool) {
	status, err := domain.ParseTaskStatus(raw)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return status, true
}

// parsePriority reads a priority case-insensitively from raw.
func parsePriority(w http.ResponseWriter, r *http.Request, raw string) (domain.TaskPriority, bool) {
	priority, err := domain.ParseTaskPriority(raw)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return priority, true
}

// optionalQuery returns the trimmed query value and whether it was non-blank.
func optionalQuery(r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	return v, v != ""
}
