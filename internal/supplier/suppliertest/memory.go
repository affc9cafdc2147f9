// Package suppliertest provides an in-memory supplier.Repository for tests.
package suppliertest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minimalapi/fornecedor/internal/supplier"
)

// MemoryRepository is a goroutine-safe in-memory supplier.Repository that
// keeps insertion order.
type MemoryRepository struct {
	mu       sync.Mutex
	rows     []supplier.Supplier
	writes   int
	zeroRows bool
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Writes returns how many Insert, Update and Delete calls were made.
func (m *MemoryRepository) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// SetZeroRowsAffected makes every later mutation report zero affected rows
// without changing anything.
func (m *MemoryRepository) SetZeroRowsAffected(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zeroRows = v
}

func (m *MemoryRepository) List(_ context.Context) ([]supplier.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]supplier.Supplier, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*supplier.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		s := m.rows[i]
		return &s, nil
	}
	return nil, supplier.ErrNotFound
}

func (m *MemoryRepository) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(id) >= 0, nil
}

func (m *MemoryRepository) Insert(_ context.Context, s *supplier.Supplier) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.zeroRows {
		return 0, nil
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	m.rows = append(m.rows, *s)
	return 1, nil
}

func (m *MemoryRepository) Update(_ context.Context, s *supplier.Supplier) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	i := m.indexOf(s.ID)
	if m.zeroRows || i < 0 {
		return 0, nil
	}
	s.CreatedAt = m.rows[i].CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.rows[i] = *s
	return 1, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	i := m.indexOf(id)
	if m.zeroRows || i < 0 {
		return 0, nil
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return 1, nil
}

func (m *MemoryRepository) indexOf(id uuid.UUID) int {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return i
		}
	}
	return -1
}

var _ supplier.Repository = (*MemoryRepository)(nil)
