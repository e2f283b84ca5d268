package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

const typeColumns = `id, name, inverse_name, category, is_symmetric, auto_create_inverse,
	description, created_at, updated_at`

// CreateType inserts a catalog entry.
func (s *Store) CreateType(ctx context.Context, t *types.RelationshipType) error {
	if t == nil {
		return storage.ErrInvalidInput
	}
	if t.Name == "" {
		return fmt.Errorf("%w: relationship type name is required", storage.ErrInvalidInput)
	}
	if t.ID == "" {
		t.ID = types.NewRelationshipTypeID()
	}
	t.Normalize()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relationship_types (id, name, inverse_name, category, is_symmetric,
			auto_create_inverse, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.InverseName, t.Category, t.IsSymmetric, t.AutoCreateInverse,
		t.Description, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// GetType retrieves a type by ID.
func (s *Store) GetType(ctx context.Context, id string) (*types.RelationshipType, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+typeColumns+" FROM relationship_types WHERE id = ?", id)
	t, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get relationship type: %w", err)
	}
	return t, nil
}

// FindTypeByName performs a case-sensitive exact lookup by name.
func (s *Store) FindTypeByName(ctx context.Context, name string) (*types.RelationshipType, error) {
	return findTypeByName(ctx, s.db, name)
}

// findTypeByName is the querier-level lookup shared with the relationship
// transaction path, where it must see uncommitted catalog state.
func findTypeByName(ctx context.Context, q querier, name string) (*types.RelationshipType, error) {
	row := q.QueryRowContext(ctx, "SELECT "+typeColumns+" FROM relationship_types WHERE name = ?", name)
	t, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: find relationship type by name: %w", err)
	}
	return t, nil
}

func findTypeByID(ctx context.Context, q querier, id string) (*types.RelationshipType, error) {
	row := q.QueryRowContext(ctx, "SELECT "+typeColumns+" FROM relationship_types WHERE id = ?", id)
	t, err := scanType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: find relationship type by id: %w", err)
	}
	return t, nil
}

// ListTypes returns the full catalog sorted by category then name.
func (s *Store) ListTypes(ctx context.Context) ([]*types.RelationshipType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+typeColumns+" FROM relationship_types ORDER BY category, name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list relationship types: %w", err)
	}
	defer rows.Close()

	var result []*types.RelationshipType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan relationship type: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// UpdateType modifies a catalog entry. Toggling auto_create_inverse off does
// not retroactively remove mirrors created while it was on; the flag only
// gates future create/delete events.
func (s *Store) UpdateType(ctx context.Context, t *types.RelationshipType) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: relationship type ID is required", storage.ErrInvalidInput)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: relationship type name is required", storage.ErrInvalidInput)
	}
	t.Normalize()
	t.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE relationship_types SET name = ?, inverse_name = ?, category = ?,
			is_symmetric = ?, auto_create_inverse = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.InverseName, t.Category, t.IsSymmetric, t.AutoCreateInverse,
		t.Description, t.UpdatedAt, t.ID)
	if err != nil {
		return translateConstraintErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteType removes an unreferenced catalog entry. Deletion of a type still
// referenced by any relationship is blocked, never cascaded.
func (s *Store) DeleteType(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM relationships WHERE type_id = ?", id).Scan(&refs); err != nil {
		return fmt.Errorf("sqlite: count type references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: %d relationship(s) reference this type", storage.ErrTypeInUse, refs)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM relationship_types WHERE id = ?", id)
	if err != nil {
		// The ON DELETE RESTRICT FK backstops the count check under concurrency.
		if errors.Is(translateConstraintErr(err), storage.ErrInvalidInput) {
			return fmt.Errorf("%w: relationships still reference this type", storage.ErrTypeInUse)
		}
		return fmt.Errorf("sqlite: delete relationship type: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

// SeedTypes bulk-upserts catalog entries keyed on name. Existing entries keep
// their IDs so relationships referencing them are unaffected.
func (s *Store) SeedTypes(ctx context.Context, seed []types.RelationshipType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := range seed {
		t := seed[i]
		t.Normalize()
		if t.ID == "" {
			t.ID = types.NewRelationshipTypeID()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO relationship_types (id, name, inverse_name, category, is_symmetric,
				auto_create_inverse, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				inverse_name = excluded.inverse_name,
				category = excluded.category,
				is_symmetric = excluded.is_symmetric,
				auto_create_inverse = excluded.auto_create_inverse,
				description = excluded.description,
				updated_at = excluded.updated_at`,
			t.ID, t.Name, t.InverseName, t.Category, t.IsSymmetric, t.AutoCreateInverse,
			t.Description, now, now)
		if err != nil {
			return fmt.Errorf("sqlite: seed relationship type %q: %w", t.Name, err)
		}
	}

	return tx.Commit()
}

func scanType(row rowScanner) (*types.RelationshipType, error) {
	var (
		t           types.RelationshipType
		inverseName sql.NullString
		description sql.NullString
	)
	err := row.Scan(&t.ID, &t.Name, &inverseName, &t.Category, &t.IsSymmetric,
		&t.AutoCreateInverse, &description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.InverseName = inverseName.String
	t.Description = description.String
	return &t, nil
}
