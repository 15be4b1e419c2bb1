package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// unexpectedErrorMessage is the only text a client sees for an unmapped error.
const unexpectedErrorMessage = "An unexpected error occurred. Please try again later."

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTaskStatus),
		errors.Is(err, domain.ErrInvalidTaskPriority),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrInvalidBody):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrTaskNotOwned),
		errors.Is(err, middleware.ErrIdentityMismatch):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, service.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return unexpectedErrorMessage
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, domain.ErrInvalidTaskStatus):
		return "Invalid task status"
	case errors.Is(err, domain.ErrInvalidTaskPriority):
		return "Invalid task priority"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, shared.ErrInvalidBody):
		return "Invalid request format"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"

	case errors.Is(err, service.ErrTaskNotOwned):
		return "You do not have access to this task"
	case errors.Is(err, middleware.ErrIdentityMismatch):
		return "User does not match the authenticated account"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrTooManyAttempts):
		return "Too many failed login attempts. Please try again later."

	default:
		return unexpectedErrorMessage
	}
}

// HandleAPIError writes the response for err: its mapped status, a safe
// message (or fallbackMsg for client errors when given) and, for
// validation failures, the per-field details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if fallbackMsg != "" && status < http.StatusInternalServerError &&
		!errors.Is(err, domain.ErrValidation) {
		message = fallbackMsg
	}

	var opts []shared.ResponseOption
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		opts = append(opts, shared.WithDetails(verr.Fields))
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
