package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	fnErr := errors.New("function failed")
	beginErr := errors.New("begin failed")
	commitErr := errors.New("commit failed")
	rollbackErr := errors.New("rollback failed")

	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		fn          TxFn
		wantIs      error
		wantMessage string
	}{
		{
			name: "commits on success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *sql.Tx) error { return nil },
		},
		{
			name: "rolls back and returns the function error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:     func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantIs: fnErr,
		},
		{
			name: "begin failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(beginErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return nil },
			wantIs:      beginErr,
			wantMessage: "failed to begin transaction",
		},
		{
			name: "commit failure",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(commitErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return nil },
			wantIs:      commitErr,
			wantMessage: "failed to commit transaction",
		},
		{
			name: "rollback failure keeps the original error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(rollbackErr)
			},
			fn:          func(ctx context.Context, tx *sql.Tx) error { return fnErr },
			wantIs:      fnErr,
			wantMessage: "rollback failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tc.setup(mock)

			err = RunInTransaction(context.Background(), db, tc.fn)
			if tc.wantIs == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantIs)
			}
			if tc.wantMessage != "" {
				assert.Contains(t, err.Error(), tc.wantMessage)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBackAndRepanics(t *testing.T) {
	for _, rollbackErr := range []error{nil, errors.New("rollback failed")} {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		assert.PanicsWithValue(t, "boom", func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	}
}

func TestDBTransactor_RunInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	transactor := NewDBTransactor(db)
	err = transactor.RunInTransaction(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE user_id = $1", int64(4))
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDBTransactor_NilDB(t *testing.T) {
	assert.Panics(t, func() { NewDBTransactor(nil) })
}
