package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/tasker-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create inserts a new user and assigns its generated ID.
	// The user must carry a HashedPassword; plaintext is never stored.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by their email address, compared
	// case-insensitively. Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether an account uses the email, compared
	// case-insensitively.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update persists the display name, password hash and UpdatedAt of an
	// existing user. Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
