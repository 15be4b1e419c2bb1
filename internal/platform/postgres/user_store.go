package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const userColumns = `id, email, password_hash, username, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.NewValidationError("password", "must be hashed before storage")
	}

	query := `
		INSERT INTO users (email, password_hash, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		domain.NormalizeEmail(user.Email),
		user.HashedPassword,
		user.DisplayName,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("email", user.Email))
			return MapUniqueViolation(err, store.ErrEmailExists)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("email", user.Email))
		return wrapError("user", "create", err)
	}

	user.Email = domain.NormalizeEmail(user.Email)
	log.Info("user created successfully", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return nil, wrapError("user", "get", err)
	}

	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", err.Error()))
		return nil, wrapError("user", "get_by_email", err)
	}

	return user, nil
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)).Scan(&exists); err != nil {
		log.Error("failed to check email existence", slog.String("error", err.Error()))
		return false, wrapError("user", "exists_by_email", err)
	}

	return exists, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET username = $1, password_hash = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, user.DisplayName, user.HashedPassword, user.UpdatedAt, user.ID)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return wrapError("user", "update", err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to get rows affected",
				slog.String("error", err.Error()),
				slog.Int64("user_id", user.ID))
		}
		return err
	}

	log.Info("user updated successfully", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return wrapError("user", "delete", err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted successfully", slog.Int64("user_id", id))
	return nil
}

// Count implements store.UserStore.Count
func (s *PostgresUserStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count users",
			slog.String("error", err.Error()))
		return 0, wrapError("user", "count", err)
	}
	return count, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
