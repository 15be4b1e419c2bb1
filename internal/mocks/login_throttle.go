package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MockLoginThrottle implements auth.LoginThrottle with an in-memory counter.
type MockLoginThrottle struct {
	MaxAttempts int
	Err         error

	mu       sync.Mutex
	failures map[string]int
}

var _ auth.LoginThrottle = (*MockLoginThrottle)(nil)

// NewMockLoginThrottle blocks a key after maxAttempts failures.
func NewMockLoginThrottle(maxAttempts int) *MockLoginThrottle {
	return &MockLoginThrottle{MaxAttempts: maxAttempts, failures: make(map[string]int)}
}

// Blocked implements auth.LoginThrottle
func (m *MockLoginThrottle) Blocked(_ context.Context, key string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Failures(key) >= m.MaxAttempts, nil
}

// RecordFailure implements auth.LoginThrottle
func (m *MockLoginThrottle) RecordFailure(_ context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key]++
	return nil
}

// Reset implements auth.LoginThrottle
func (m *MockLoginThrottle) Reset(_ context.Context, key string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, key)
	return nil
}

// Failures returns the recorded failure count for key.
func (m *MockLoginThrottle) Failures(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}
