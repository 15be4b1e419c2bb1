package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthService handles registration and credential checks.
type AuthService interface {
	// Register creates an account. Returns store.ErrEmailExists when the
	// lowercased email is already registered.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials. Unknown email and wrong password both
	// return ErrInvalidCredentials; a locked account returns ErrTooManyAttempts.
	Login(ctx context.Context, in LoginInput) (*domain.User, error)

	// EmailExists reports whether the email is registered, ignoring case.
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AuthServiceImpl implements AuthService
type AuthServiceImpl struct {
	users     UserService
	userStore store.UserStore
	hasher    auth.PasswordHasher
	throttle  auth.LoginThrottle
	logger    *slog.Logger
}

var _ AuthService = (*AuthServiceImpl)(nil)

// NewAuthService creates an AuthService. A nil throttle disables lockout.
func NewAuthService(
	users UserService,
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	throttle auth.LoginThrottle,
	logger *slog.Logger,
) *AuthServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	if throttle == nil {
		throttle = auth.NoopThrottle{}
	}
	return &AuthServiceImpl{
		users:     users,
		userStore: userStore,
		hasher:    hasher,
		throttle:  throttle,
		logger:    logger.With(slog.String("component", "auth_service")),
	}
}

// Register implements AuthService.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.users.CreateUser(ctx, in.Email, in.Password, in.DisplayName)
}

// Login implements AuthService.
func (s *AuthServiceImpl) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email := domain.NormalizeEmail(in.Email)

	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		log.Warn("login throttle unavailable", slog.String("error", err.Error()))
	}
	if blocked {
		log.Info("login rejected for locked account")
		return nil, ErrTooManyAttempts
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.recordFailure(ctx, log, email)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.recordFailure(ctx, log, email)
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to compare password hash",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		log.Warn("failed to reset login throttle", slog.String("error", err.Error()))
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// EmailExists implements AuthService.
func (s *AuthServiceImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.userStore.ExistsByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check email",
			slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (s *AuthServiceImpl) recordFailure(ctx context.Context, log *slog.Logger, email string) {
	log.Debug("login failed: invalid credentials")
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		log.Warn("failed to record login failure", slog.String("error", err.Error()))
	}
}
