package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// UserService provides user directory operations.
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, id int64) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email address, ignoring case
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// CreateUser creates a new user with a bcrypt-hashed password.
	// Returns store.ErrEmailExists when the lowercased email is taken.
	CreateUser(ctx context.Context, email, password, displayName string) (*domain.User, error)

	// UpdateDisplayName replaces a user's display name
	UpdateDisplayName(ctx context.Context, id int64, name string) (*domain.User, error)

	// UpdatePassword re-hashes and stores a new password
	UpdatePassword(ctx context.Context, id int64, newPassword string) error

	// DeleteUser deletes a user together with all of their tasks
	DeleteUser(ctx context.Context, id int64) error

	// CountUsers returns the number of registered users
	CountUsers(ctx context.Context) (int64, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore  store.UserStore
	taskStore  store.TaskStore
	transactor store.Transactor
	hasher     auth.PasswordHasher
	emitter    events.EventEmitter
	now        func() time.Time
	logger     *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	taskStore store.TaskStore,
	transactor store.Transactor,
	hasher auth.PasswordHasher,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &UserServiceImpl{
		userStore:  userStore,
		taskStore:  taskStore,
		transactor: transactor,
		hasher:     hasher,
		emitter:    emitter,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "user_service")),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found", slog.Int64("user_id", id))
		} else {
			log.Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", id))
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address
func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found by email")
		} else {
			log.Error("failed to retrieve user by email",
				slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}

	return user, nil
}

// CreateUser validates, hashes and inserts a user inside one transaction.
func (s *UserServiceImpl) CreateUser(
	ctx context.Context,
	email, password, displayName string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	user, err := domain.NewUser(email, password, displayName, now)
	if err != nil {
		log.Debug("rejected user input", slog.String("error", err.Error()))
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.SetHashedPassword(hash, now)

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		exists, err := txStore.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return store.ErrEmailExists
		}

		return txStore.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
		} else {
			log.Error("failed to save user to database", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info("user created", slog.Int64("user_id", user.ID))
	emitEvent(ctx, s.emitter, s.logger, events.TypeUserRegistered, user.ID,
		events.UserPayload{Email: user.Email}, now)

	return user, nil
}

// UpdateDisplayName follows the pattern of getting the complete user first,
// then updating only the specific field.
func (s *UserServiceImpl) UpdateDisplayName(
	ctx context.Context,
	id int64,
	name string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		if err := user.SetDisplayName(name, s.now()); err != nil {
			return err
		}

		if err := txStore.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update display name: %w", err)
		}
		updated = user
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to update display name", id, err)
		return nil, err
	}

	log.Info("display name updated", slog.Int64("user_id", id))
	return updated, nil
}

// UpdatePassword validates and re-hashes the new password before storing it.
func (s *UserServiceImpl) UpdatePassword(ctx context.Context, id int64, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for password update: %w", err)
		}

		user.SetHashedPassword(hash, s.now())

		if err := txStore.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to update password", id, err)
		return err
	}

	log.Info("password updated", slog.Int64("user_id", id))
	return nil
}

// DeleteUser removes the user's tasks and then the user in one transaction.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var removed int64
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.userStore.WithTx(tx).GetByID(ctx, id); err != nil {
			return fmt.Errorf("failed to retrieve user for deletion: %w", err)
		}

		n, err := s.taskStore.WithTx(tx).DeleteByUser(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete user tasks: %w", err)
		}
		removed = n

		if err := s.userStore.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to delete user", id, err)
		return err
	}

	log.Info("user deleted",
		slog.Int64("user_id", id),
		slog.Int64("tasks_removed", removed))
	emitEvent(ctx, s.emitter, s.logger, events.TypeUserDeleted, id,
		events.UserPayload{TasksRemoved: removed}, s.now())

	return nil
}

// CountUsers returns the number of registered users
func (s *UserServiceImpl) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.userStore.Count(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count users",
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// logFailure logs expected outcomes at debug and everything else at error.
func (s *UserServiceImpl) logFailure(log *slog.Logger, msg string, id int64, err error) {
	if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, domain.ErrValidation) {
		log.Debug(msg, slog.String("error", err.Error()), slog.Int64("user_id", id))
		return
	}
	log.Error(msg, slog.String("error", err.Error()), slog.Int64("user_id", id))
}
