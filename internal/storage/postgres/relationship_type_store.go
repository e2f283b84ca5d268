package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

// CreateType inserts a new relationship type into the catalog.
func (s *Store) CreateType(ctx context.Context, rt *types.RelationshipType) error {
	if rt == nil {
		return storage.ErrInvalidInput
	}
	if rt.Name == "" {
		return fmt.Errorf("%w: type name is required", storage.ErrInvalidInput)
	}

	rt.Normalize()
	if rt.ID == "" {
		rt.ID = types.NewRelationshipTypeID()
	}
	now := time.Now()
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = now
	}
	if rt.UpdatedAt.IsZero() {
		rt.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relationship_types (id, name, inverse_name, category, is_symmetric,
			auto_create_inverse, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rt.ID, rt.Name, nullableString(rt.InverseName), rt.Category, rt.IsSymmetric,
		rt.AutoCreateInverse, nullableString(rt.Description), rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// GetType retrieves a relationship type by ID.
func (s *Store) GetType(ctx context.Context, id string) (*types.RelationshipType, error) {
	return findTypeByID(ctx, s.db, id)
}

// FindTypeByName retrieves a relationship type by its unique name.
func (s *Store) FindTypeByName(ctx context.Context, name string) (*types.RelationshipType, error) {
	return findTypeByName(ctx, s.db, name)
}

// ListTypes returns the whole catalog, grouped by category.
func (s *Store) ListTypes(ctx context.Context) ([]*types.RelationshipType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+typeColumns+" FROM relationship_types ORDER BY category, name")
	if err != nil {
		return nil, fmt.Errorf("postgres: list types: %w", err)
	}
	defer rows.Close()

	var result []*types.RelationshipType
	for rows.Next() {
		rt, err := scanTypeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan type: %w", err)
		}
		result = append(result, rt)
	}
	return result, rows.Err()
}

// UpdateType modifies an existing relationship type.
func (s *Store) UpdateType(ctx context.Context, rt *types.RelationshipType) error {
	if rt == nil || rt.ID == "" {
		return fmt.Errorf("%w: type ID is required", storage.ErrInvalidInput)
	}
	if rt.Name == "" {
		return fmt.Errorf("%w: type name is required", storage.ErrInvalidInput)
	}

	rt.Normalize()
	rt.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE relationship_types SET name = $1, inverse_name = $2, category = $3,
			is_symmetric = $4, auto_create_inverse = $5, description = $6, updated_at = $7
		WHERE id = $8`,
		rt.Name, nullableString(rt.InverseName), rt.Category, rt.IsSymmetric,
		rt.AutoCreateInverse, nullableString(rt.Description), rt.UpdatedAt, rt.ID)
	if err != nil {
		return translateConstraintErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteType removes a relationship type. Types referenced by existing
// relationships cannot be deleted.
func (s *Store) DeleteType(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	var refs int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM relationships WHERE type_id = $1", id).Scan(&refs); err != nil {
		return fmt.Errorf("postgres: count type references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: %d relationships use this type", storage.ErrTypeInUse, refs)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM relationship_types WHERE id = $1", id)
	if err != nil {
		return translateConstraintErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit()
}

// SeedTypes upserts the default type catalog by name, preserving the IDs of
// types that already exist so their relationships keep pointing at them.
func (s *Store) SeedTypes(ctx context.Context, seed []types.RelationshipType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for i := range seed {
		rt := seed[i]
		if rt.Name == "" {
			return fmt.Errorf("%w: seed type without name", storage.ErrInvalidInput)
		}
		rt.Normalize()
		if rt.ID == "" {
			rt.ID = types.NewRelationshipTypeID()
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO relationship_types (id, name, inverse_name, category, is_symmetric,
				auto_create_inverse, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT(name) DO UPDATE SET
				inverse_name = EXCLUDED.inverse_name,
				category = EXCLUDED.category,
				is_symmetric = EXCLUDED.is_symmetric,
				auto_create_inverse = EXCLUDED.auto_create_inverse,
				description = EXCLUDED.description,
				updated_at = EXCLUDED.updated_at`,
			rt.ID, rt.Name, nullableString(rt.InverseName), rt.Category, rt.IsSymmetric,
			rt.AutoCreateInverse, nullableString(rt.Description), now, now)
		if err != nil {
			return translateConstraintErr(err)
		}
	}

	return tx.Commit()
}
