package service

import "errors"

// Sentinel errors returned by the services. Store and domain sentinels
// (store.ErrUserNotFound, store.ErrTaskNotFound, store.ErrEmailExists,
// domain.ErrValidation) pass through wrapped and are checked the same way.
//
// The API layer maps each of them to a status code exactly once.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password,
	// so callers cannot tell which one failed.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTooManyAttempts indicates an account is locked after repeated failed logins.
	// API layer should map this to HTTP 429 Too Many Requests.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrTaskNotOwned indicates the task exists but belongs to another user.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTaskNotOwned = errors.New("task is owned by another user")
)
