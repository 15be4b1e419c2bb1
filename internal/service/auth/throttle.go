package auth

import "context"

// LoginThrottle tracks failed login attempts per account key.
type LoginThrottle interface {
	// Blocked reports whether key has reached the failure limit.
	Blocked(ctx context.Context, key string) (bool, error)

	// RecordFailure counts one failed attempt for key.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the failure count for key.
	Reset(ctx context.Context, key string) error
}

// NoopThrottle never blocks.
type NoopThrottle struct{}

var _ LoginThrottle = NoopThrottle{}

func (NoopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (NoopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (NoopThrottle) Reset(context.Context, string) error           { return nil }
