package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

const throttleKeyPrefix = "tasker:login_failures:"

// LoginThrottle counts failed logins in Redis. Each failure extends the
// window, so an account stays locked until it has been quiet for lockout.
type LoginThrottle struct {
	client      goredis.Cmdable
	maxAttempts int64
	lockout     time.Duration
}

var _ auth.LoginThrottle = (*LoginThrottle)(nil)

// NewLoginThrottle creates a throttle allowing maxAttempts failures per lockout window.
func NewLoginThrottle(client goredis.Cmdable, maxAttempts int, lockout time.Duration) *LoginThrottle {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &LoginThrottle{
		client:      client,
		maxAttempts: int64(maxAttempts),
		lockout:     lockout,
	}
}

func throttleKey(key string) string {
	return throttleKeyPrefix + key
}

// Blocked implements auth.LoginThrottle.
func (t *LoginThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Get(ctx, throttleKey(key)).Int64()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login failures: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure implements auth.LoginThrottle.
func (t *LoginThrottle) RecordFailure(ctx context.Context, key string) error {
	k := throttleKey(key)
	_, err := t.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, t.lockout)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	return nil
}

// Reset implements auth.LoginThrottle.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, throttleKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset login failures: %w", err)
	}
	return nil
}
