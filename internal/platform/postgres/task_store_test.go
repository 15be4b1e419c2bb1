package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskRowColumns = []string{
	"id", "title", "description", "due_date", "status", "priority", "user_id", "created_at", "updated_at",
}

func newMockTaskStore(t *testing.T) (*PostgresTaskStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresTaskStore(db, nil), mock
}

func TestPostgresTaskStore_Create(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	due := civil.Date{Year: 2025, Month: 6, Day: 20}

	t.Run("inserts with nullable columns", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`INSERT INTO tasks`).
			WithArgs("Pay rent", nil, "2025-06-20", "TODO", "HIGH", int64(1), now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

		task, err := domain.NewTask(1, domain.TaskDetails{Title: "Pay rent", DueDate: &due, Priority: domain.TaskPriorityHigh}, now)
		require.NoError(t, err)

		require.NoError(t, s.Create(context.Background(), task))
		assert.Equal(t, int64(10), task.ID)
	})

	t.Run("missing owner maps to user not found", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`INSERT INTO tasks`).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_user_id_fkey"})

		task, err := domain.NewTask(404, domain.TaskDetails{Title: "Orphan"}, now)
		require.NoError(t, err)

		err = s.Create(context.Background(), task)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("invalid task never reaches the database", func(t *testing.T) {
		s, _ := newMockTaskStore(t)
		err := s.Create(context.Background(), &domain.Task{UserID: 1, Status: "TODO", Priority: "LOW"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPostgresTaskStore_GetByID(t *testing.T) {
	now := time.Now().UTC()

	t.Run("maps nullable columns", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`SELECT .* FROM tasks WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(int64(5), "Title", nil, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), "IN_PROGRESS", "LOW", int64(2), now, now))

		task, err := s.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "", task.Description)
		require.NotNil(t, task.DueDate)
		assert.Equal(t, civil.Date{Year: 2025, Month: 7, Day: 4}, *task.DueDate)
		assert.Equal(t, domain.TaskStatusInProgress, task.Status)
		assert.Equal(t, domain.TaskPriorityLow, task.Priority)
		assert.Equal(t, int64(2), task.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`SELECT .* FROM tasks WHERE id`).WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), 5)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskConditions(t *testing.T) {
	status := domain.TaskStatusDone
	priority := domain.TaskPriorityHigh
	keyword := "Report"
	before := civil.Date{Year: 2025, Month: 1, Day: 2}
	after := civil.Date{Year: 2024, Month: 12, Day: 31}

	tests := []struct {
		name      string
		filter    store.TaskFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "owner only",
			filter:    store.TaskFilter{},
			wantWhere: "user_id = $1",
			wantArgs:  []any{int64(9)},
		},
		{
			name:      "status and priority",
			filter:    store.TaskFilter{Status: &status, Priority: &priority},
			wantWhere: "user_id = $1 AND status = $2 AND priority = $3",
			wantArgs:  []any{int64(9), "DONE", "HIGH"},
		},
		{
			name:   "keyword reuses one placeholder",
			filter: store.TaskFilter{Keyword: &keyword},
			wantWhere: "user_id = $1 AND (strpos(lower(title), lower($2)) > 0 OR " +
				"strpos(lower(coalesce(description, '')), lower($2)) > 0)",
			wantArgs: []any{int64(9), "Report"},
		},
		{
			name:      "due window",
			filter:    store.TaskFilter{DueBefore: &before, DueAfter: &after},
			wantWhere: "user_id = $1 AND due_date < $2::date AND due_date > $3::date",
			wantArgs:  []any{int64(9), "2025-01-02", "2024-12-31"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			where, args := taskConditions(9, tc.filter)
			assert.Equal(t, tc.wantWhere, where)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestPostgresTaskStore_Find(t *testing.T) {
	now := time.Now().UTC()

	t.Run("created order and empty result is not nil", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`FROM tasks WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(taskRowColumns))

		tasks, err := s.Find(context.Background(), 1, store.TaskFilter{}, store.OrderByCreatedDesc)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("priority order uses severity rank", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectQuery(`ORDER BY CASE priority WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END DESC`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(taskRowColumns).
				AddRow(int64(2), "b", "desc", nil, "TODO", "HIGH", int64(1), now, now).
				AddRow(int64(1), "a", nil, nil, "TODO", "LOW", int64(1), now, now))

		tasks, err := s.Find(context.Background(), 1, store.TaskFilter{}, store.OrderByPriorityDesc)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, domain.TaskPriorityHigh, tasks[0].Priority)
		assert.Equal(t, "desc", tasks[0].Description)
		assert.Nil(t, tasks[1].DueDate)
	})

	t.Run("row iteration error", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		rows := sqlmock.NewRows(taskRowColumns).
			AddRow(int64(1), "a", nil, nil, "TODO", "LOW", int64(1), now, now).
			RowError(0, sql.ErrConnDone)
		mock.ExpectQuery(`FROM tasks`).WillReturnRows(rows)

		_, err := s.Find(context.Background(), 1, store.TaskFilter{}, store.OrderByCreatedDesc)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestPostgresTaskStore_Count(t *testing.T) {
	s, mock := newMockTaskStore(t)
	status := domain.TaskStatusTodo
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE user_id = \$1 AND status = \$2`).
		WithArgs(int64(3), "TODO").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := s.Count(context.Background(), 3, store.TaskFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestPostgresTaskStore_Mutations(t *testing.T) {
	now := time.Now().UTC()

	t.Run("update", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec(`UPDATE tasks\s+SET title = \$1`).
			WithArgs("New", "details", nil, "DONE", "LOW", now, int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		task := &domain.Task{
			ID: 8, Title: "New", Description: "details", Status: domain.TaskStatusDone,
			Priority: domain.TaskPriorityLow, UserID: 1, UpdatedAt: now,
		}
		assert.NoError(t, s.Update(context.Background(), task))
	})

	t.Run("update missing task", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec(`UPDATE tasks`).WillReturnResult(sqlmock.NewResult(0, 0))

		task := &domain.Task{ID: 8, Title: "x", Status: "TODO", Priority: "LOW", UserID: 1}
		assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec(`UPDATE tasks SET status = \$1, updated_at = \$2 WHERE id = \$3`).
			WithArgs("IN_PROGRESS", now, int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateStatus(context.Background(), 8, domain.TaskStatusInProgress, now))
	})

	t.Run("update status rejects unknown values", func(t *testing.T) {
		s, _ := newMockTaskStore(t)
		assert.ErrorIs(t, s.UpdateStatus(context.Background(), 8, "PAUSED", now), domain.ErrValidation)
	})

	t.Run("delete missing task", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
			WithArgs(int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), 8), store.ErrTaskNotFound)
	})

	t.Run("delete by user", func(t *testing.T) {
		s, mock := newMockTaskStore(t)
		mock.ExpectExec(`DELETE FROM tasks WHERE user_id = \$1`).
			WithArgs(int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := s.DeleteByUser(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}
