package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
	"github.com/phrazzld/tasker-api/internal/platform/rabbitmq"
	"github.com/phrazzld/tasker-api/internal/platform/redis"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	authService service.AuthService
	userService service.UserService
	taskService service.TaskService

	eventEmitter *events.InMemoryEventEmitter

	// closers are released in reverse order during cleanup.
	closers []io.Closer
}

// newApplication creates the application with all dependencies initialized.
// Redis and RabbitMQ are optional and only dialed when configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Bool("require_token", cfg.Auth.RequireToken))

	loc, err := cfg.Server.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Server.Timezone, err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	transactor := store.NewDBTransactor(db)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))
	if cfg.Messaging.AMQPURL != "" {
		publisher, err := rabbitmq.Dial(cfg.Messaging, logger)
		if err != nil {
			app.releaseClosers()
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		app.eventEmitter.RegisterHandler(publisher)
		app.closers = append(app.closers, publisher)
		logger.Info("event publishing enabled", slog.String("exchange", cfg.Messaging.Exchange))
	}

	var throttle auth.LoginThrottle = auth.NoopThrottle{}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			app.releaseClosers()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers = append(app.closers, client)
		throttle = redis.NewLoginThrottle(client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)
		logger.Info("login throttling enabled",
			slog.Int("max_attempts", cfg.Auth.LoginMaxAttempts),
			slog.Duration("lockout", cfg.Auth.LoginLockout))
	}

	userSvc := service.NewUserService(app.userStore, app.taskStore, transactor, hasher, app.eventEmitter, logger)
	app.userService = userSvc
	app.authService = service.NewAuthService(userSvc, app.userStore, hasher, throttle, logger)
	app.taskService = service.NewTaskService(
		app.taskStore,
		app.userStore,
		transactor,
		app.eventEmitter,
		loc,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server
// fails, releasing every resource before returning.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter(ctx)

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	app.releaseClosers()

	if app.db != nil {
		closeDB(app.db, app.logger)
	}

	app.logger.Info("application shutdown completed")
}

// releaseClosers closes broker and cache clients in reverse order of creation.
func (app *application) releaseClosers() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error("error releasing resource", slog.String("error", err.Error()))
		}
	}
	app.closers = nil
}
