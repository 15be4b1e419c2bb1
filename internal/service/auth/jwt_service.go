package auth

import (
	"context"
	"time"
)

// JWTService issues and validates signed access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for userID.
	GenerateToken(ctx context.Context, userID int64) (string, error)

	// ValidateToken verifies tokenString and returns its claims.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    int64
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
