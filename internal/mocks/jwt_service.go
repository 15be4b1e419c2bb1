package mocks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/tasker-api/internal/service/auth"
)

const mockTokenPrefix = "token-for-"

// MockJWTService implements auth.JWTService for testing.
// By default tokens look like "token-for-<id>" and validate back to that id.
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, userID int64) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, userID int64) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return fmt.Sprintf("%s%d", mockTokenPrefix, userID), nil
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}

	if !strings.HasPrefix(tokenString, mockTokenPrefix) {
		return nil, auth.ErrInvalidToken
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(tokenString, mockTokenPrefix), 10, 64)
	if err != nil || id <= 0 {
		return nil, auth.ErrInvalidToken
	}

	now := time.Now()
	return &auth.Claims{UserID: id, IssuedAt: now, ExpiresAt: now.Add(time.Hour), ID: tokenString}, nil
}
