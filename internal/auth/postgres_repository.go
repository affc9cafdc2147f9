package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements UserRepository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new UserRepository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) UserRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (email, password_hash, email_confirmed, lockout_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.EmailConfirmed,
		u.LockoutEnabled,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetByID retrieves a single user by its UUID. Claims and roles are not loaded.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail retrieves a single user by email, ignoring case.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "LOWER(email) = LOWER($1)", email)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, email, password_hash, email_confirmed, lockout_enabled,
		       access_failed_count, lockout_end, created_at
		FROM users
		WHERE ` + where

	var u User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.EmailConfirmed, &u.LockoutEnabled,
		&u.AccessFailedCount, &u.LockoutEnd, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// Claims returns the custom claims of a user ordered by claim type.
func (r *PostgresRepository) Claims(ctx context.Context, userID uuid.UUID) ([]Claim, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT claim_type, claim_value
		FROM user_claims
		WHERE user_id = $1
		ORDER BY claim_type ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user claims: %w", err)
	}

	claims, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Claim, error) {
		var c Claim
		err := row.Scan(&c.Type, &c.Value)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning user claims: %w", err)
	}

	return claims, nil
}

// Roles returns the role names of a user ordered alphabetically.
func (r *PostgresRepository) Roles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
		ORDER BY role ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing user roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning user roles: %w", err)
	}

	return roles, nil
}

// AddClaim attaches a claim to a user, replacing the value of an existing
// claim of the same type.
func (r *PostgresRepository) AddClaim(ctx context.Context, userID uuid.UUID, c Claim) error {
	query := `
		INSERT INTO user_claims (user_id, claim_type, claim_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, claim_type) DO UPDATE SET claim_value = EXCLUDED.claim_value`

	if _, err := r.pool.Exec(ctx, query, userID, c.Type, c.Value); err != nil {
		return fmt.Errorf("adding user claim: %w", err)
	}
	return nil
}

// AddRole grants a role to a user. Granting a role twice is a no-op.
func (r *PostgresRepository) AddRole(ctx context.Context, userID uuid.UUID, role string) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, userID, role); err != nil {
		return fmt.Errorf("adding user role: %w", err)
	}
	return nil
}

// RecordFailedAccess counts a failed sign-in in a single statement so that
// concurrent failures are not lost.
func (r *PostgresRepository) RecordFailedAccess(ctx context.Context, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (*time.Time, error) {
	query := `
		UPDATE users
		SET access_failed_count = CASE WHEN access_failed_count + 1 >= $2 THEN 0 ELSE access_failed_count + 1 END,
		    lockout_end         = CASE WHEN access_failed_count + 1 >= $2 THEN $3 ELSE lockout_end END
		WHERE id = $1
		RETURNING lockout_end`

	var lockoutEnd *time.Time
	err := r.pool.QueryRow(ctx, query, userID, maxAttempts, lockUntil).Scan(&lockoutEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("recording failed access: %w", err)
	}

	return lockoutEnd, nil
}

// ResetAccessFailedCount clears the failure counter after a successful sign-in.
func (r *PostgresRepository) ResetAccessFailedCount(ctx context.Context, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "UPDATE users SET access_failed_count = 0 WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("resetting failed access count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
