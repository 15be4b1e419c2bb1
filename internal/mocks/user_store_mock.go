package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockUserStore is a mock of store.UserStore interface for use with testify/mock
type TestifyMockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*TestifyMockUserStore)(nil)

// Create is a mock implementation of store.UserStore.Create
func (m *TestifyMockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *TestifyMockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail is a mock implementation of store.UserStore.GetByEmail
func (m *TestifyMockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// ExistsByEmail is a mock implementation of store.UserStore.ExistsByEmail
func (m *TestifyMockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// Update is a mock implementation of store.UserStore.Update
func (m *TestifyMockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// Delete is a mock implementation of store.UserStore.Delete
func (m *TestifyMockUserStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Count is a mock implementation of store.UserStore.Count
func (m *TestifyMockUserStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// WithTx is a mock implementation of store.UserStore.WithTx
func (m *TestifyMockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
