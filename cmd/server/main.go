// Package main implements the entry point for the Tasker API server,
// which serves multi-user task tracking over a JSON HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, reset, status, version) and exit")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before configuration")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile, *migrateCmd); err != nil {
		slog.Error("tasker-api exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or serves HTTP until ctx is cancelled.
func run(ctx context.Context, envFile, migrateCmd string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("timezone", cfg.Server.Timezone))

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer closeDB(db, log)
		return postgres.Migrate(ctx, db, migrateCmd, log)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
			closeDB(db, log)
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		closeDB(db, log)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
