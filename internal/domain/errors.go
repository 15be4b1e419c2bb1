// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Concrete failures are reported as *ValidationError, which wraps it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTaskStatus is returned when a status string is not a known TaskStatus.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority is returned when a priority string is not a known TaskPriority.
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// FieldError describes a single failed constraint on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field constraint that failed for an input.
// It wraps ErrValidation so callers can test for it with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError creates a ValidationError holding a single field failure.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records another failed field constraint.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field failures were recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns the receiver as an error when it holds failures, nil otherwise.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Messages returns the failures rendered as "field: message".
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return msgs
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if !e.HasErrors() {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Messages(), ", ")
}

// Unwrap allows errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
