package store

import (
	"context"
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskFilter narrows a user's tasks. Nil fields do not constrain the result;
// all set fields must match.
type TaskFilter struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority

	// Keyword is matched case-insensitively as a substring of the title or
	// the description. A non-nil empty keyword matches every task.
	Keyword *string

	// DueBefore keeps tasks whose due date is strictly earlier.
	DueBefore *civil.Date

	// DueAfter keeps tasks whose due date is strictly later.
	DueAfter *civil.Date
}

// TaskOrder selects the ordering of a task listing.
type TaskOrder int

const (
	// OrderByCreatedDesc lists newest tasks first.
	OrderByCreatedDesc TaskOrder = iota

	// OrderByPriorityDesc lists HIGH, then MEDIUM, then LOW, newest first within a priority.
	OrderByPriorityDesc
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create inserts a new task and assigns its generated ID.
	// Returns ErrUserNotFound if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Find returns the user's tasks matching filter in the given order.
	// Returns an empty slice when nothing matches.
	Find(ctx context.Context, userID int64, filter TaskFilter, order TaskOrder) ([]*domain.Task, error)

	// Count returns how many of the user's tasks match filter.
	Count(ctx context.Context, userID int64, filter TaskFilter) (int64, error)

	// Update persists every editable field and UpdatedAt of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// UpdateStatus changes only status and updated_at.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, id int64, status domain.TaskStatus, updatedAt time.Time) error

	// Delete removes a task. Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// DeleteByUser removes every task owned by userID and returns how many were removed.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
