// Package mocks provides centralized mock implementations for testing.
//
// The store mocks are in-memory and behave like the PostgreSQL stores:
// generated ids, lowercase emails, ErrUserNotFound / ErrTaskNotFound /
// ErrEmailExists, and filtering and ordering that match the SQL. Each
// method can be overridden with its ...Fn field.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	tasks := mocks.NewMockTaskStore(users)
//	users.GetByIDFn = func(ctx context.Context, id int64) (*domain.User, error) {
//	    return nil, errors.New("connection reset")
//	}
package mocks
