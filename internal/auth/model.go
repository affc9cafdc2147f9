package auth

import (
	"time"

	"github.com/google/uuid"
)

// Well-known claim and role names.
const (
	ClaimExcludeSupplier = "ExcludeSupplier"
	RoleAdmin            = "Admin"
)

// User represents a row in the users table together with its claims and roles.
type User struct {
	ID                uuid.UUID
	Email             string
	PasswordHash      string
	EmailConfirmed    bool
	LockoutEnabled    bool
	AccessFailedCount int
	LockoutEnd        *time.Time
	CreatedAt         time.Time

	Claims []Claim
	Roles  []string
}

// Claim is a named attribute attached to a user and embedded in issued tokens.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
