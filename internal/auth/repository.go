package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when a user with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository provides operations on the users, user_claims and user_roles tables.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Claims(ctx context.Context, userID uuid.UUID) ([]Claim, error)
	Roles(ctx context.Context, userID uuid.UUID) ([]string, error)
	AddClaim(ctx context.Context, userID uuid.UUID, claim Claim) error
	AddRole(ctx context.Context, userID uuid.UUID, role string) error

	// RecordFailedAccess increments the failure counter. When the counter
	// reaches maxAttempts it is reset and lockout_end is set to lockUntil.
	// The resulting lockout_end is returned.
	RecordFailedAccess(ctx context.Context, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (*time.Time, error)
	ResetAccessFailedCount(ctx context.Context, userID uuid.UUID) error
}
