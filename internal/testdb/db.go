package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

var migrateOnce sync.Once

// GetTestDatabaseURL returns DATABASE_URL, falling back to TASKER_TEST_DB_URL.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	return os.Getenv("TASKER_TEST_DB_URL")
}

// GetTestDB opens a migrated database connection, skipping the test when no
// database URL is configured. The connection is closed on test cleanup.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or TASKER_TEST_DB_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "Failed to open database connection")

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "Database ping failed")

	var migrateErr error
	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, postgres.MigrateUp, nil)
	})
	require.NoError(t, migrateErr, "Failed to run migrations")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})

	return db
}

// WithTx executes fn within a transaction that is always rolled back, so
// tests never see each other's writes.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
