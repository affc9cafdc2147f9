package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minimalapi/fornecedor/internal/auth"
	"github.com/minimalapi/fornecedor/internal/testutil/pgtest"
)

func setupUserRepo(t *testing.T) auth.UserRepository {
	t.Helper()
	return auth.NewRepository(pgtest.New(t))
}

func createTestUser(t *testing.T, repo auth.UserRepository, email string) *auth.User {
	t.Helper()
	u := &auth.User{Email: email, PasswordHash: "hash", EmailConfirmed: true, LockoutEnabled: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestPostgresUsers_CreateAndGet(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo, "Ana@Example.com")
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana@Example.com", byID.Email)
	assert.True(t, byID.LockoutEnabled)
	assert.Nil(t, byID.LockoutEnd)

	byEmail, err := repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestPostgresUsers_NotFound(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	err = repo.ResetAccessFailedCount(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestPostgresUsers_DuplicateEmailIgnoresCase(t *testing.T) {
	repo := setupUserRepo(t)
	createTestUser(t, repo, "ana@example.com")

	err := repo.Create(context.Background(), &auth.User{Email: "ANA@example.com", PasswordHash: "hash"})

	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestPostgresUsers_ClaimsAndRoles(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo, "ana@example.com")

	claims, err := repo.Claims(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, claims)

	require.NoError(t, repo.AddClaim(ctx, u.ID, auth.Claim{Type: "b", Value: "1"}))
	require.NoError(t, repo.AddClaim(ctx, u.ID, auth.Claim{Type: "a", Value: "1"}))
	require.NoError(t, repo.AddClaim(ctx, u.ID, auth.Claim{Type: "b", Value: "2"}))
	require.NoError(t, repo.AddRole(ctx, u.ID, auth.RoleAdmin))
	require.NoError(t, repo.AddRole(ctx, u.ID, auth.RoleAdmin))

	claims, err = repo.Claims(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []auth.Claim{{Type: "a", Value: "1"}, {Type: "b", Value: "2"}}, claims)

	roles, err := repo.Roles(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{auth.RoleAdmin}, roles)
}

func TestPostgresUsers_RecordFailedAccess(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo, "ana@example.com")
	lockUntil := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Microsecond)

	end, err := repo.RecordFailedAccess(ctx, u.ID, 2, lockUntil)
	require.NoError(t, err)
	assert.Nil(t, end)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AccessFailedCount)

	end, err = repo.RecordFailedAccess(ctx, u.ID, 2, lockUntil)
	require.NoError(t, err)
	require.NotNil(t, end)
	assert.True(t, end.Equal(lockUntil))

	stored, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AccessFailedCount)

	_, err = repo.RecordFailedAccess(ctx, uuid.New(), 2, lockUntil)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
