package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/minimalapi/fornecedor/internal/validator"
)

// ErrPersistFailure is returned when a write reached the database but
// affected no rows.
var ErrPersistFailure = errors.New("supplier write affected no rows")

// Service implements the supplier store operations on top of a Repository:
// input is validated before any write and existence is checked before any
// mutation of an existing row.
type Service struct {
	repo  Repository
	newID func() uuid.UUID
}

// NewService creates a new supplier Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.New}
}

// List returns every stored supplier.
func (s *Service) List(ctx context.Context) ([]Supplier, error) {
	return s.repo.List(ctx)
}

// Get returns the supplier with the given id or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new supplier with its name trimmed. Any id
// sent by the client is replaced with a freshly generated one.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	sup.Normalize()
	if err := validator.Check(sup); err != nil {
		return err
	}

	sup.ID = s.newID()

	n, err := s.repo.Insert(ctx, sup)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPersistFailure
	}
	return nil
}

// Replace overwrites the supplier stored under id with sup. The row must
// already exist; sup.ID is forced to id.
func (s *Service) Replace(ctx context.Context, id uuid.UUID, sup *Supplier) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}

	sup.Normalize()
	if err := validator.Check(sup); err != nil {
		return err
	}

	sup.ID = id

	n, err := s.repo.Update(ctx, sup)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPersistFailure
	}
	return nil
}

// Delete removes the supplier stored under id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureExists(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPersistFailure
	}
	return nil
}

func (s *Service) ensureExists(ctx context.Context, id uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up supplier: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
