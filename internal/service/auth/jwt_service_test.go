package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60}
}

func newTestService(t *testing.T, secret string, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(secret), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsWeakConfig(t *testing.T) {
	_, err := NewJWTService(testAuthConfig("short"))
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(t, testSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(t, testSecret, issued)
	token, err := issuer.GenerateToken(context.Background(), 7)
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		now     time.Time
		token   string
		wantErr error
	}{
		{name: "valid", secret: testSecret, now: issued.Add(30 * time.Minute), token: token},
		{name: "within clock skew", secret: testSecret, now: issued.Add(61 * time.Minute), token: token},
		{name: "expired", secret: testSecret, now: issued.Add(2 * time.Hour), token: token, wantErr: ErrExpiredToken},
		{
			name:    "wrong secret",
			secret:  "wrong-secret-that-is-long-enough-for-testing",
			now:     issued,
			token:   token,
			wantErr: ErrInvalidToken,
		},
		{name: "malformed", secret: testSecret, now: issued, token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "empty", secret: testSecret, now: issued, token: "", wantErr: ErrInvalidToken},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, tc.secret, tc.now)
			claims, err := svc.ValidateToken(context.Background(), tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), claims.UserID)
		})
	}
}

func TestValidateToken_RejectsOtherSigningMethods(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwtCustomClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = newTestService(t, testSecret, now).ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, hasher.Compare(hash, "password123"))
	assert.ErrorIs(t, hasher.Compare(hash, "password124"), ErrPasswordMismatch)

	other, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	assert.Equal(t, 10, NewBcryptHasher(0).cost)
	assert.Equal(t, 10, NewBcryptHasher(40).cost)
	assert.Equal(t, 12, NewBcryptHasher(12).cost)
}
