package mocks

import "github.com/phrazzld/tasker-api/internal/service/auth"

const mockHashPrefix = "hashed:"

// MockPasswordHasher implements auth.PasswordHasher with a reversible,
// deterministic "hash" so tests stay fast.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements auth.PasswordHasher
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return mockHashPrefix + password, nil
}

// Compare implements auth.PasswordHasher
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != mockHashPrefix+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
