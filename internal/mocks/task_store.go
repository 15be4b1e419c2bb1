package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, task *domain.Task) error
	GetByIDFn      func(ctx context.Context, id int64) (*domain.Task, error)
	FindFn         func(ctx context.Context, userID int64, filter store.TaskFilter, order store.TaskOrder) ([]*domain.Task, error)
	CountFn        func(ctx context.Context, userID int64, filter store.TaskFilter) (int64, error)
	UpdateFn       func(ctx context.Context, task *domain.Task) error
	UpdateStatusFn func(ctx context.Context, id int64, status domain.TaskStatus, updatedAt time.Time) error
	DeleteFn       func(ctx context.Context, id int64) error

	// Users, when set, is consulted for the owner foreign key on Create.
	Users *MockUserStore

	mu     sync.Mutex
	tasks  map[int64]domain.Task
	nextID int64
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty in-memory task store. users may be nil.
func NewMockTaskStore(users *MockUserStore) *MockTaskStore {
	return &MockTaskStore{
		Users: users,
		tasks: make(map[int64]domain.Task),
	}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if m.Users != nil && !m.Users.Exists(task.UserID) {
		return store.ErrUserNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	task.ID = m.nextID
	m.tasks[task.ID] = *task
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

// Find implements the TaskStore interface
func (m *MockTaskStore) Find(
	ctx context.Context,
	userID int64,
	filter store.TaskFilter,
	order store.TaskOrder,
) ([]*domain.Task, error) {
	if m.FindFn != nil {
		return m.FindFn(ctx, userID, filter, order)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Task, 0)
	for _, task := range m.tasks {
		if matches(task, userID, filter) {
			t := task
			result = append(result, &t)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if order == store.OrderByPriorityDesc && a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return result, nil
}

// Count implements the TaskStore interface
func (m *MockTaskStore) Count(ctx context.Context, userID int64, filter store.TaskFilter) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, userID, filter)
	}

	tasks, err := m.Find(ctx, userID, filter, store.OrderByCreatedDesc)
	if err != nil {
		return 0, err
	}
	return int64(len(tasks)), nil
}

func matches(task domain.Task, userID int64, filter store.TaskFilter) bool {
	if task.UserID != userID {
		return false
	}
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && task.Priority != *filter.Priority {
		return false
	}
	if filter.Keyword != nil && !task.MatchesKeyword(*filter.Keyword) {
		return false
	}
	if filter.DueBefore != nil && !task.IsOverdue(*filter.DueBefore) {
		return false
	}
	if filter.DueAfter != nil && !task.IsFuture(*filter.DueAfter) {
		return false
	}
	return true
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.Title = task.Title
	existing.Description = task.Description
	existing.DueDate = task.DueDate
	existing.Status = task.Status
	existing.Priority = task.Priority
	existing.UpdatedAt = task.UpdatedAt
	m.tasks[task.ID] = existing
	return nil
}

// UpdateStatus implements the TaskStore interface
func (m *MockTaskStore) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	updatedAt time.Time,
) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, status, updatedAt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.Status = status
	existing.UpdatedAt = updatedAt
	m.tasks[id] = existing
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// DeleteByUser implements the TaskStore interface
func (m *MockTaskStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, task := range m.tasks {
		if task.UserID == userID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx returns the same store; the in-memory store has no transactions.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

// Len returns the number of stored tasks across all users.
func (m *MockTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
