package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// TaskInput carries the editable fields of a task. Empty Status and
// Priority fall back to TODO and MEDIUM.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *civil.Date
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
}

func (in TaskInput) details() domain.TaskDetails {
	return domain.TaskDetails{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Status:      in.Status,
		Priority:    in.Priority,
	}
}

// TaskFilter is the composite filter. Nil fields and a blank keyword do
// not constrain the result.
type TaskFilter struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Keyword  string
}

// TaskService manages a user's tasks. Every method takes the acting user's id.
type TaskService interface {
	CreateTask(ctx context.Context, in TaskInput, userID int64) (*domain.Task, error)
	GetTask(ctx context.Context, taskID, userID int64) (*domain.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]*domain.Task, error)
	ListByPriority(ctx context.Context, userID int64) ([]*domain.Task, error)
	FilterByStatus(ctx context.Context, userID int64, status domain.TaskStatus) ([]*domain.Task, error)
	FilterByPriority(ctx context.Context, userID int64, priority domain.TaskPriority) ([]*domain.Task, error)
	SearchByKeyword(ctx context.Context, userID int64, keyword string) ([]*domain.Task, error)
	FindOverdue(ctx context.Context, userID int64) ([]*domain.Task, error)
	FindFuture(ctx context.Context, userID int64) ([]*domain.Task, error)
	FilterComposite(ctx context.Context, userID int64, filter TaskFilter) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, taskID int64, in TaskInput, userID int64) (*domain.Task, error)
	UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus, userID int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, userID int64) error
	CountAll(ctx context.Context, userID int64) (int64, error)
	CountByStatus(ctx context.Context, userID int64, status domain.TaskStatus) (int64, error)
}

// TaskServiceImpl implements TaskService
type TaskServiceImpl struct {
	taskStore  store.TaskStore
	userStore  store.UserStore
	transactor store.Transactor
	emitter    events.EventEmitter
	location   *time.Location
	now        func() time.Time
	logger     *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a TaskService. loc decides which calendar day is
// "today" for overdue and future queries; nil means UTC.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	transactor store.Transactor,
	emitter events.EventEmitter,
	loc *time.Location,
	logger *slog.Logger,
) *TaskServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskServiceImpl{
		taskStore:  taskStore,
		userStore:  userStore,
		transactor: transactor,
		emitter:    emitter,
		location:   loc,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "task_service")),
	}
}

func (s *TaskServiceImpl) today() civil.Date {
	return civil.DateOf(s.now().In(s.location))
}

// CreateTask validates the input and stores a task owned by userID.
// Returns store.ErrUserNotFound when the owner does not exist.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, in TaskInput, userID int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	task, err := domain.NewTask(userID, in.details(), now)
	if err != nil {
		log.Debug("rejected task input", slog.String("error", err.Error()))
		return nil, err
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.userStore.WithTx(tx).GetByID(ctx, userID); err != nil {
			return fmt.Errorf("failed to verify task owner: %w", err)
		}
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		s.logFailure(log, "failed to create task", 0, userID, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID))
	emitEvent(ctx, s.emitter, s.logger, events.TypeTaskCreated, userID, events.TaskPayload{
		TaskID:   task.ID,
		Title:    task.Title,
		Status:   string(task.Status),
		Priority: string(task.Priority),
	}, now)

	return task, nil
}

// GetTask returns the task when userID owns it.
func (s *TaskServiceImpl) GetTask(ctx context.Context, taskID, userID int64) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, s.taskStore, taskID, userID)
	if err != nil {
		s.logFailure(logger.FromContextOrDefault(ctx, s.logger), "failed to get task", taskID, userID, err)
		return nil, err
	}
	return task, nil
}

// ownedTask loads a task and enforces ownership.
func (s *TaskServiceImpl) ownedTask(
	ctx context.Context,
	tasks store.TaskStore,
	taskID, userID int64,
) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	if !task.IsOwnedBy(userID) {
		return nil, ErrTaskNotOwned
	}
	return task, nil
}

// ListTasks returns all of the user's tasks, newest first.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.find(ctx, userID, store.TaskFilter{}, store.OrderByCreatedDesc)
}

// ListByPriority returns the user's tasks ordered HIGH, MEDIUM, LOW.
func (s *TaskServiceImpl) ListByPriority(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.find(ctx, userID, store.TaskFilter{}, store.OrderByPriorityDesc)
}

// FilterByStatus returns the user's tasks with exactly this status.
func (s *TaskServiceImpl) FilterByStatus(
	ctx context.Context,
	userID int64,
	status domain.TaskStatus,
) ([]*domain.Task, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return s.find(ctx, userID, store.TaskFilter{Status: &status}, store.OrderByCreatedDesc)
}

// FilterByPriority returns the user's tasks with exactly this priority.
func (s *TaskServiceImpl) FilterByPriority(
	ctx context.Context,
	userID int64,
	priority domain.TaskPriority,
) ([]*domain.Task, error) {
	if err := validatePriority(priority); err != nil {
		return nil, err
	}
	return s.find(ctx, userID, store.TaskFilter{Priority: &priority}, store.OrderByCreatedDesc)
}

// SearchByKeyword matches keyword verbatim, ignoring case, against title or
// description. An empty keyword matches every task.
func (s *TaskServiceImpl) SearchByKeyword(
	ctx context.Context,
	userID int64,
	keyword string,
) ([]*domain.Task, error) {
	return s.find(ctx, userID, store.TaskFilter{Keyword: &keyword}, store.OrderByCreatedDesc)
}

// FindOverdue returns tasks due strictly before today.
func (s *TaskServiceImpl) FindOverdue(ctx context.Context, userID int64) ([]*domain.Task, error) {
	today := s.today()
	return s.find(ctx, userID, store.TaskFilter{DueBefore: &today}, store.OrderByCreatedDesc)
}

// FindFuture returns tasks due strictly after today.
func (s *TaskServiceImpl) FindFuture(ctx context.Context, userID int64) ([]*domain.Task, error) {
	today := s.today()
	return s.find(ctx, userID, store.TaskFilter{DueAfter: &today}, store.OrderByCreatedDesc)
}

// FilterComposite ANDs the set predicates of filter.
func (s *TaskServiceImpl) FilterComposite(
	ctx context.Context,
	userID int64,
	filter TaskFilter,
) ([]*domain.Task, error) {
	f := store.TaskFilter{Status: filter.Status, Priority: filter.Priority}
	if f.Status != nil {
		if err := validateStatus(*f.Status); err != nil {
			return nil, err
		}
	}
	if f.Priority != nil {
		if err := validatePriority(*f.Priority); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(filter.Keyword) != "" {
		keyword := filter.Keyword
		f.Keyword = &keyword
	}
	return s.find(ctx, userID, f, store.OrderByCreatedDesc)
}

func (s *TaskServiceImpl) find(
	ctx context.Context,
	userID int64,
	filter store.TaskFilter,
	order store.TaskOrder,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.Find(ctx, userID, filter, order)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask replaces every editable field of a task owned by userID.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID int64,
	in TaskInput,
	userID int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	var updated *domain.Task
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.ownedTask(ctx, txTasks, taskID, userID)
		if err != nil {
			return err
		}

		if err := task.Update(in.details(), now); err != nil {
			return err
		}

		if err := txTasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to update task", taskID, userID, err)
		return nil, err
	}

	log.Info("task updated", slog.Int64("task_id", taskID), slog.Int64("user_id", userID))
	emitEvent(ctx, s.emitter, s.logger, events.TypeTaskUpdated, userID, events.TaskPayload{
		TaskID:   updated.ID,
		Title:    updated.Title,
		Status:   string(updated.Status),
		Priority: string(updated.Priority),
	}, now)

	return updated, nil
}

// UpdateStatus changes only the status of a task owned by userID.
func (s *TaskServiceImpl) UpdateStatus(
	ctx context.Context,
	taskID int64,
	status domain.TaskStatus,
	userID int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	if err := validateStatus(status); err != nil {
		return nil, err
	}

	var (
		updated   *domain.Task
		oldStatus domain.TaskStatus
	)
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		task, err := s.ownedTask(ctx, txTasks, taskID, userID)
		if err != nil {
			return err
		}

		oldStatus = task.Status
		if err := task.SetStatus(status, now); err != nil {
			return err
		}

		if err := txTasks.UpdateStatus(ctx, task.ID, task.Status, task.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		updated = task
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to update task status", taskID, userID, err)
		return nil, err
	}

	log.Info("task status updated",
		slog.Int64("task_id", taskID),
		slog.String("status", string(status)))
	emitEvent(ctx, s.emitter, s.logger, events.TypeTaskStatusChanged, userID, events.TaskPayload{
		TaskID:    updated.ID,
		Status:    string(updated.Status),
		OldStatus: string(oldStatus),
	}, now)

	return updated, nil
}

// DeleteTask removes a task owned by userID.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, taskID, userID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		if _, err := s.ownedTask(ctx, txTasks, taskID, userID); err != nil {
			return err
		}

		if err := txTasks.Delete(ctx, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to delete task", taskID, userID, err)
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", taskID), slog.Int64("user_id", userID))
	emitEvent(ctx, s.emitter, s.logger, events.TypeTaskDeleted, userID,
		events.TaskPayload{TaskID: taskID}, s.now())

	return nil
}

// CountAll returns how many tasks the user owns.
func (s *TaskServiceImpl) CountAll(ctx context.Context, userID int64) (int64, error) {
	return s.count(ctx, userID, store.TaskFilter{})
}

// CountByStatus returns how many of the user's tasks have this status.
func (s *TaskServiceImpl) CountByStatus(
	ctx context.Context,
	userID int64,
	status domain.TaskStatus,
) (int64, error) {
	if err := validateStatus(status); err != nil {
		return 0, err
	}
	return s.count(ctx, userID, store.TaskFilter{Status: &status})
}

func (s *TaskServiceImpl) count(ctx context.Context, userID int64, filter store.TaskFilter) (int64, error) {
	n, err := s.taskStore.Count(ctx, userID, filter)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// logFailure logs expected outcomes at debug and everything else at error.
func (s *TaskServiceImpl) logFailure(log *slog.Logger, msg string, taskID, userID int64, err error) {
	attrs := []any{
		slog.String("error", err.Error()),
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", userID),
	}
	switch {
	case errors.Is(err, ErrTaskNotOwned):
		log.Warn(msg, attrs...)
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, domain.ErrValidation):
		log.Debug(msg, attrs...)
	default:
		log.Error(msg, attrs...)
	}
}

func validateStatus(status domain.TaskStatus) error {
	if !status.IsValid() {
		return domain.NewValidationError("status", "must be one of TODO, IN_PROGRESS, DONE")
	}
	return nil
}

func validatePriority(priority domain.TaskPriority) error {
	if !priority.IsValid() {
		return domain.NewValidationError("priority", "must be one of LOW, MEDIUM, HIGH")
	}
	return nil
}
