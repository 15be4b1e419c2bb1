package service

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/events"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("lowercases email and hashes password", func(t *testing.T) {
		f := newFixture(t)
		user, err := f.authSvc.Register(ctx, RegisterInput{
			Email: "Alice@X.com", Password: "pw12345678", DisplayName: "Alice",
		})
		require.NoError(t, err)

		assert.Positive(t, user.ID)
		assert.Equal(t, "alice@x.com", user.Email)
		assert.Empty(t, user.Password)
		assert.NotEqual(t, "pw12345678", user.HashedPassword)
		assert.Equal(t, fixedNow, user.CreatedAt)
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
		assert.Equal(t, 1, f.transactor.Calls)
		assert.Equal(t, []string{events.TypeUserRegistered}, f.emitter.Types())
	})

	t.Run("duplicate email differing only in case", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@x.com", "Alice")

		_, err := f.authSvc.Register(ctx, RegisterInput{
			Email: "ALICE@x.com", Password: "pw12345678", DisplayName: "Other",
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)

		n, err := f.users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("validation reports every field", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.authSvc.Register(ctx, RegisterInput{Email: "nope", Password: "short"})
		require.ErrorIs(t, err, domain.ErrValidation)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		fields := make([]string, 0, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"email", "display_name", "password"}, fields)
		assert.Zero(t, f.transactor.Calls)
	})

	t.Run("hash failure", func(t *testing.T) {
		f := newFixture(t)
		f.hasher.HashFn = func(string) (string, error) { return "", errors.New("entropy exhausted") }

		_, err := f.authSvc.Register(ctx, RegisterInput{
			Email: "a@x.com", Password: "pw12345678", DisplayName: "A",
		})
		assert.ErrorContains(t, err, "entropy exhausted")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success is case-insensitive on email", func(t *testing.T) {
		f := newFixture(t)
		registered := f.register(t, "alice@x.com", "Alice")

		user, err := f.authSvc.Login(ctx, LoginInput{Email: "ALICE@X.COM", Password: "pw12345678"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@x.com", "Alice")

		_, unknownErr := f.authSvc.Login(ctx, LoginInput{Email: "ghost@x.com", Password: "pw12345678"})
		_, wrongErr := f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong-password"})

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("locks after repeated failures and resets on success", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@x.com", "Alice")

		for i := 0; i < 2; i++ {
			_, err := f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "bad-password"})
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}
		_, err := f.authSvc.Login(ctx, LoginInput{Email: "Alice@x.com", Password: "pw12345678"})
		require.NoError(t, err)
		assert.Zero(t, f.throttle.Failures("alice@x.com"))

		for i := 0; i < 3; i++ {
			_, _ = f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "bad-password"})
		}
		compares := f.hasher.CompareCallCount

		_, err = f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "pw12345678"})
		assert.ErrorIs(t, err, ErrTooManyAttempts)
		assert.Equal(t, compares, f.hasher.CompareCallCount, "locked accounts skip the password check")
	})

	t.Run("throttle outage does not block login", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@x.com", "Alice")
		f.throttle.Err = errors.New("redis unavailable")

		_, err := f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "pw12345678"})
		assert.NoError(t, err)
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.users.GetByEmailFn = func(context.Context, string) (*domain.User, error) {
			return nil, errors.New("connection reset")
		}

		_, err := f.authSvc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "pw12345678"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_EmailExists(t *testing.T) {
	ctx := context.Background()

	users := &mocks.TestifyMockUserStore{}
	users.On("ExistsByEmail", ctx, "bob@x.com").Return(true, nil).Once()
	users.On("ExistsByEmail", ctx, "down@x.com").Return(false, errors.New("timeout")).Once()

	svc := NewAuthService(nil, users, &mocks.MockPasswordHasher{}, nil, nil)

	exists, err := svc.EmailExists(ctx, "Bob@X.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = svc.EmailExists(ctx, "down@x.com")
	assert.ErrorContains(t, err, "timeout")

	users.AssertExpectations(t)
}
