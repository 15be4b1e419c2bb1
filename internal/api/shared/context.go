package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"
)

// ContextKey is the type of request-scoped values set by the API layer.
type ContextKey string

const (
	// UserIDContextKey holds the user id bound from a validated access token.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the id that correlates logs with error responses.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace id (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the request's trace ID, or "" when none was set.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithUserID binds an authenticated user id to the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the user id bound by the identity middleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok && userID > 0
}

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID is unique per nanosecond but not unpredictable.
func fallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	now := time.Now()
	binary.BigEndian.PutUint64(b[:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], uint32(now.Nanosecond()))
	binary.BigEndian.PutUint32(b[12:16], uint32(now.Unix()))
	return hex.EncodeToString(b)
}
