package auth

import "errors"

// Token and credential errors. The API maps the token errors to 401.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures, wrong issuer
	// and non-positive user ids.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned once exp (plus leeway) has passed.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrPasswordMismatch means the plaintext does not match the bcrypt hash.
	ErrPasswordMismatch = errors.New("password does not match")
)
