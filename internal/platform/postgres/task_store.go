package postgres

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
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const taskColumns = `id, title, description, due_date, status, priority, user_id, created_at, updated_at`

const (
	orderByCreated  = ` ORDER BY created_at DESC, id DESC`
	orderByPriority = ` ORDER BY CASE priority WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END DESC, created_at DESC, id DESC`
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// Returns store.ErrUserNotFound if the owner does not exist (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (title, description, due_date, status, priority, user_id, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		nullableText(task.Description),
		nullableDate(task.DueDate),
		string(task.Status),
		string(task.Priority),
		task.UserID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.Int64("user_id", task.UserID))
			return errorf(store.ErrUserNotFound, "user with ID %d", task.UserID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.Int64("user_id", task.UserID))
		return wrapError("task", "create", err)
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID),
		slog.String("status", string(task.Status)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, wrapError("task", "get", err)
	}

	return task, nil
}

// Find implements store.TaskStore.Find
func (s *PostgresTaskStore) Find(
	ctx context.Context,
	userID int64,
	filter store.TaskFilter,
	order store.TaskOrder,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := taskConditions(userID, filter)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where
	if order == store.OrderByPriorityDesc {
		query += orderByPriority
	} else {
		query += orderByCreated
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return nil, wrapError("task", "find", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found tasks",
		slog.Int64("user_id", userID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Count implements store.TaskStore.Count
func (s *PostgresTaskStore) Count(ctx context.Context, userID int64, filter store.TaskFilter) (int64, error) {
	where, args := taskConditions(userID, filter)

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return 0, wrapError("task", "count", err)
	}
	return count, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3::date, status = $4, priority = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullableText(task.Description),
		nullableDate(task.DueDate),
		string(task.Status),
		string(task.Priority),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return wrapError("task", "update", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *PostgresTaskStore) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.TaskStatus,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return domain.NewValidationError("status", "must be one of TODO, IN_PROGRESS, DONE")
	}

	query := `UPDATE tasks SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, string(status), updatedAt, id)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id),
			slog.String("status", string(status)))
		return wrapError("task", "update_status", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task status updated successfully",
		slog.Int64("task_id", id),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return wrapError("task", "delete", err)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// DeleteByUser implements store.TaskStore.DeleteByUser
func (s *PostgresTaskStore) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		log.Error("failed to delete tasks for user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return 0, wrapError("task", "delete_by_user", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("deleted tasks for user",
		slog.Int64("user_id", userID),
		slog.Int64("count", n))
	return n, nil
}

// taskConditions renders filter as a WHERE clause scoped to userID.
func taskConditions(userID int64, filter store.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	next := func(arg any) int {
		args = append(args, arg)
		return len(args)
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", next(string(*filter.Status))))
	}
	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", next(string(*filter.Priority))))
	}
	if filter.Keyword != nil {
		n := next(*filter.Keyword)
		conds = append(conds, fmt.Sprintf(
			"(strpos(lower(title), lower($%d)) > 0 OR strpos(lower(coalesce(description, '')), lower($%d)) > 0)",
			n, n))
	}
	if filter.DueBefore != nil {
		conds = append(conds, fmt.Sprintf("due_date < $%d::date", next(filter.DueBefore.String())))
	}
	if filter.DueAfter != nil {
		conds = append(conds, fmt.Sprintf("due_date > $%d::date", next(filter.DueAfter.String())))
	}

	return strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullTime
		status      string
		priority    string
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&dueDate,
		&status,
		&priority,
		&task.UserID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	if dueDate.Valid {
		d := civil.DateOf(dueDate.Time)
		task.DueDate = &d
	}
	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return &task, nil
}

func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableDate(d *civil.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
