package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is the shortest accepted plaintext password.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72

	// MaxDisplayNameLength is the longest accepted display name, in characters.
	MaxDisplayNameLength = 50

	// MaxEmailLength matches the users.email column width.
	MaxEmailLength = 255
)

var fieldValidator = validator.New()

// User represents a registered account. Tasks belong to exactly one user.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Password       string    `json:"-"` // Plaintext password, only held between input and hashing
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeEmail returns the canonical stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}

// NewUser builds a not-yet-persisted user with a normalized email and both
// timestamps set to now. The plaintext password must be hashed by the caller
// before the user is stored.
func NewUser(email, password, displayName string, now time.Time) (*User, error) {
	user := &User{
		Email:       NormalizeEmail(email),
		DisplayName: displayName,
		Password:    password,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the user's fields and reports every failure at once.
func (u *User) Validate() error {
	verr := &ValidationError{}

	validateEmail(verr, u.Email)
	validateDisplayName(verr, u.DisplayName)

	if u.Password != "" {
		validatePassword(verr, u.Password)
	} else if u.HashedPassword == "" {
		verr.Add("password", "must not be blank")
	}

	return verr.OrNil()
}

// SetDisplayName replaces the display name and refreshes UpdatedAt.
func (u *User) SetDisplayName(name string, now time.Time) error {
	verr := &ValidationError{}
	validateDisplayName(verr, name)
	if err := verr.OrNil(); err != nil {
		return err
	}

	u.DisplayName = name
	u.UpdatedAt = now.UTC()
	return nil
}

// SetHashedPassword stores a new password hash, clears any plaintext and
// refreshes UpdatedAt.
func (u *User) SetHashedPassword(hash string, now time.Time) {
	u.HashedPassword = hash
	u.Password = ""
	u.UpdatedAt = now.UTC()
}

// ValidatePassword checks a plaintext password against the length rules.
func ValidatePassword(password string) error {
	verr := &ValidationError{}
	validatePassword(verr, password)
	return verr.OrNil()
}

func validateEmail(verr *ValidationError, email string) {
	if strings.TrimSpace(email) == "" {
		verr.Add("email", "must not be blank")
		return
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		verr.Add("email", "must be at most 255 characters")
		return
	}
	if err := fieldValidator.Var(email, "email"); err != nil {
		verr.Add("email", "must be a well-formed email address")
	}
}

func validateDisplayName(verr *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		verr.Add("display_name", "must not be blank")
		return
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		verr.Add("display_name", "must be at most 50 characters")
	}
}

func validatePassword(verr *ValidationError, password string) {
	switch {
	case password == "":
		verr.Add("password", "must not be blank")
	case len(password) < MinPasswordLength:
		verr.Add("password", "must be at least 8 characters")
	case len(password) > MaxPasswordLength:
		verr.Add("password", "must be at most 72 bytes")
	}
}
