package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownRole        = errors.New("unknown role")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrValidation         = errors.New("validation failed")
)

const (
	RoleUser       = "ROLE_USER"
	RoleInstructor = "ROLE_INSTRUCTOR"
	RoleAdmin      = "ROLE_ADMIN"

	MinPasswordLength = 6
)

// Roles lists every role seeded on start.
func Roles() []string {
	return []string{RoleUser, RoleInstructor, RoleAdmin}
}

func IsKnownRole(role string) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates the username and role names. A user without roles gets ROLE_USER.
func NewUser(username, passwordHash string, roles []string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	seen := map[string]bool{}
	var normalized []string
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if !IsKnownRole(r) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
		if !seen[r] {
			seen[r] = true
			normalized = append(normalized, r)
		}
	}
	if len(normalized) == 0 {
		normalized = []string{RoleUser}
	}
	return &User{ID: uuid.New(), Username: username, PasswordHash: passwordHash, Roles: normalized}, nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	return nil
}
