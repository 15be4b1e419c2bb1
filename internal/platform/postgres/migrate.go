package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable records applied goose versions.
const MigrationsTable = "schema_migrations"

// Migration commands accepted by Migrate.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateReset   = "reset"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// slogGooseLogger adapts goose's logger to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level without exiting; goose returns the error to the caller.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate runs a goose command against db using the embedded SQL migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "migrations"))

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(MigrationsTable)
	goose.SetLogger(&slogGooseLogger{logger: logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	const dir = "migrations"
	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, dir)
	case MigrateDown:
		err = goose.DownContext(ctx, db, dir)
	case MigrateReset:
		err = goose.ResetContext(ctx, db, dir)
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, dir)
	case MigrateVersion:
		err = goose.VersionContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migration command: %q", command)
	}
	if err != nil {
		logger.Error("migration command failed",
			slog.String("command", command),
			slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("migration command completed", slog.String("command", command))
	return nil
}
