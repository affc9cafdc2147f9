package supplier

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a supplier record is not found.
var ErrNotFound = errors.New("supplier not found")

// Repository provides row-level access to the suppliers table. Mutations
// report the number of affected rows so callers can tell a silent no-op from
// a successful write.
type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Insert(ctx context.Context, s *Supplier) (int64, error)
	Update(ctx context.Context, s *Supplier) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
