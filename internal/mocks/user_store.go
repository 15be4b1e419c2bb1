package mocks

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MockUserStore implements store.UserStore in memory
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmailFn func(ctx context.Context, email string) (bool, error)
	UpdateFn        func(ctx context.Context, user *domain.User) error
	DeleteFn        func(ctx context.Context, id int64) error
	CountFn         func(ctx context.Context) (int64, error)

	mu     sync.Mutex
	users  map[int64]domain.User
	nextID int64
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty in-memory user store
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]domain.User)}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = domain.NormalizeEmail(user.Email)
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = *user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// ExistsByEmail implements the UserStore interface
func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFn != nil {
		return m.ExistsByEmailFn(ctx, email)
	}

	_, err := m.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	existing.DisplayName = user.DisplayName
	existing.HashedPassword = user.HashedPassword
	existing.UpdatedAt = user.UpdatedAt
	m.users[user.ID] = existing
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// Count implements the UserStore interface
func (m *MockUserStore) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// WithTx returns the same store; the in-memory store has no transactions.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}

// Exists reports whether a user with id is stored.
func (m *MockUserStore) Exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok
}
