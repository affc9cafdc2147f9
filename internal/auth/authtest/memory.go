// Package authtest provides an in-memory auth.UserRepository for tests.
package authtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minimalapi/fornecedor/internal/auth"
)

// MemoryRepository is a goroutine-safe in-memory auth.UserRepository.
type MemoryRepository struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*auth.User
	claims map[uuid.UUID]map[string]string
	roles  map[uuid.UUID]map[string]struct{}
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[uuid.UUID]*auth.User),
		claims: make(map[uuid.UUID]map[string]string),
		roles:  make(map[uuid.UUID]map[string]struct{}),
	}
}

// Count returns the number of stored users.
func (m *MemoryRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemoryRepository) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrDuplicateEmail
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	stored := *u
	stored.Claims, stored.Roles = nil, nil
	m.users[u.ID] = &stored
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *MemoryRepository) Claims(_ context.Context, userID uuid.UUID) ([]auth.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []auth.Claim{}
	for t, v := range m.claims[userID] {
		out = append(out, auth.Claim{Type: t, Value: v})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Type < out[b].Type })
	return out, nil
}

func (m *MemoryRepository) Roles(_ context.Context, userID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for r := range m.roles[userID] {
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryRepository) AddClaim(_ context.Context, userID uuid.UUID, c auth.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return auth.ErrUserNotFound
	}
	if m.claims[userID] == nil {
		m.claims[userID] = make(map[string]string)
	}
	m.claims[userID][c.Type] = c.Value
	return nil
}

func (m *MemoryRepository) AddRole(_ context.Context, userID uuid.UUID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return auth.ErrUserNotFound
	}
	if m.roles[userID] == nil {
		m.roles[userID] = make(map[string]struct{})
	}
	m.roles[userID][role] = struct{}{}
	return nil
}

func (m *MemoryRepository) RecordFailedAccess(_ context.Context, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if u.AccessFailedCount+1 >= maxAttempts {
		u.AccessFailedCount = 0
		end := lockUntil
		u.LockoutEnd = &end
	} else {
		u.AccessFailedCount++
	}
	if u.LockoutEnd == nil {
		return nil, nil
	}
	end := *u.LockoutEnd
	return &end, nil
}

func (m *MemoryRepository) ResetAccessFailedCount(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.AccessFailedCount = 0
	return nil
}

var _ auth.UserRepository = (*MemoryRepository)(nil)
