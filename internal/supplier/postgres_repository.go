package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List retrieves every supplier in storage order.
func (r *PostgresRepository) List(ctx context.Context) ([]Supplier, error) {
	query := `
		SELECT id, name, legal_entity, document, created_at, updated_at
		FROM suppliers`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		err := rows.Scan(&s.ID, &s.Name, &s.LegalEntity, &s.Document, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier rows: %w", err)
	}

	if suppliers == nil {
		suppliers = []Supplier{}
	}

	return suppliers, nil
}

// GetByID retrieves a single supplier by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	query := `
		SELECT id, name, legal_entity, document, created_at, updated_at
		FROM suppliers
		WHERE id = $1`

	var s Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.LegalEntity, &s.Document, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying supplier: %w", err)
	}

	return &s, nil
}

// Exists reports whether a supplier with the given id is stored. It takes no
// row lock.
func (r *PostgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking supplier existence: %w", err)
	}
	return exists, nil
}

// Insert stores a new supplier. The caller assigns the id; timestamps come
// back from the database.
func (r *PostgresRepository) Insert(ctx context.Context, s *Supplier) (int64, error) {
	query := `
		INSERT INTO suppliers (id, name, legal_entity, document)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, s.ID, s.Name, s.LegalEntity, s.Document).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("inserting supplier: %w", err)
	}

	return 1, nil
}

// Update overwrites every editable column of the supplier identified by s.ID.
func (r *PostgresRepository) Update(ctx context.Context, s *Supplier) (int64, error) {
	query := `
		UPDATE suppliers
		SET name = $2, legal_entity = $3, document = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.LegalEntity, s.Document)
	if err != nil {
		return 0, fmt.Errorf("updating supplier: %w", err)
	}

	return result.RowsAffected(), nil
}

// Delete removes a supplier by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM suppliers WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("deleting supplier: %w", err)
	}

	return result.RowsAffected(), nil
}
