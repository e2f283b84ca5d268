package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scrypster/lifegraph/internal/engine"
	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

const relationshipColumns = `r.id, r.person_a, r.person_b, r.type_id, t.name,
	r.started_date, r.notes, r.strength, r.auto_created, r.created_at, r.updated_at`

// relTx adapts an open transaction to engine.TxStore so the inverse-sync
// engine runs inside the same transaction as the triggering write.
type relTx struct {
	tx *sql.Tx
}

func (r *relTx) FindTypeByName(ctx context.Context, name string) (*types.RelationshipType, error) {
	return findTypeByName(ctx, r.tx, name)
}

func (r *relTx) EdgeExists(ctx context.Context, personA, personB, typeID string) (bool, error) {
	var count int
	err := r.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM relationships WHERE person_a = $1 AND person_b = $2 AND type_id = $3",
		personA, personB, typeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("postgres: edge exists: %w", err)
	}
	return count > 0, nil
}

func (r *relTx) InsertEdge(ctx context.Context, rel *types.Relationship) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO relationships (id, person_a, person_b, type_id, started_date, notes,
			strength, auto_created, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rel.ID, rel.PersonA, rel.PersonB, rel.TypeID, nullableTime(rel.StartedDate),
		nullableString(rel.Notes), nullStrength(rel.Strength), rel.AutoCreated,
		rel.CreatedAt, rel.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

func (r *relTx) DeleteEdge(ctx context.Context, personA, personB, typeID string) error {
	_, err := r.tx.ExecContext(ctx,
		"DELETE FROM relationships WHERE person_a = $1 AND person_b = $2 AND type_id = $3",
		personA, personB, typeID)
	if err != nil {
		return fmt.Errorf("postgres: delete edge: %w", err)
	}
	return nil
}

// CreateRelationship validates and inserts a directed edge, then lets the
// inverse-sync engine synthesize the mirror edge within the same transaction.
func (s *Store) CreateRelationship(ctx context.Context, rel *types.Relationship) error {
	if rel == nil {
		return storage.ErrInvalidInput
	}
	if rel.PersonA == "" || rel.PersonB == "" {
		return fmt.Errorf("%w: both person_a and person_b are required", storage.ErrInvalidInput)
	}
	if rel.TypeID == "" {
		return fmt.Errorf("%w: type_id is required", storage.ErrInvalidInput)
	}
	if rel.PersonA == rel.PersonB {
		return storage.ErrSelfRelationship
	}

	if rel.ID == "" {
		rel.ID = types.NewRelationshipID()
	}
	now := time.Now()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	if rel.UpdatedAt.IsZero() {
		rel.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	txq := &relTx{tx: tx}

	edgeType, err := findTypeByID(ctx, tx, rel.TypeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: relationship type %s does not exist", storage.ErrInvalidInput, rel.TypeID)
		}
		return err
	}
	rel.TypeName = edgeType.Name

	for _, pid := range []string{rel.PersonA, rel.PersonB} {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM people WHERE id = $1", pid).Scan(&count); err != nil {
			return fmt.Errorf("postgres: check person: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: person %s does not exist", storage.ErrInvalidInput, pid)
		}
	}

	if err := txq.InsertEdge(ctx, rel); err != nil {
		return err
	}

	if err := engine.AfterCreate(ctx, txq, rel, edgeType); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRelationship retrieves an edge by ID.
func (s *Store) GetRelationship(ctx context.Context, id string) (*types.Relationship, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships r JOIN relationship_types t ON t.id = r.type_id
		WHERE r.id = $1`, id)
	rel, err := scanRelationship(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get relationship: %w", err)
	}
	return rel, nil
}

// ListRelationships retrieves edges with pagination. opts.PersonID matches
// either end of the edge.
func (s *Store) ListRelationships(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Relationship], error) {
	opts.Normalize()

	where := "WHERE TRUE"
	args := []interface{}{}

	if opts.PersonID != "" {
		args = append(args, opts.PersonID)
		where += fmt.Sprintf(" AND (r.person_a = $%d OR r.person_b = $%d)", len(args), len(args))
	}
	if opts.ExcludeAutoCreated {
		where += " AND r.auto_created = FALSE"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships r "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("postgres: count relationships: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM relationships r JOIN relationship_types t ON t.id = r.type_id
		%s ORDER BY r.%s %s LIMIT $%d OFFSET $%d`,
		relationshipColumns, where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list relationships: %w", err)
	}
	defer rows.Close()

	items := []types.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan relationship: %w", err)
		}
		items = append(items, *rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate relationships: %w", err)
	}

	return &storage.PaginatedResult[types.Relationship]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// DeleteRelationship removes an edge and its mirror atomically.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships r JOIN relationship_types t ON t.id = r.type_id
		WHERE r.id = $1`, id)
	rel, err := scanRelationship(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("postgres: load relationship for delete: %w", err)
	}

	edgeType, err := findTypeByID(ctx, tx, rel.TypeID)
	if err != nil {
		return err
	}

	txq := &relTx{tx: tx}
	if err := engine.BeforeDelete(ctx, txq, rel, edgeType); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres: delete relationship: %w", err)
	}

	return tx.Commit()
}

// nullStrength maps the zero strength onto NULL so "unset" round-trips.
func nullStrength(strength int) interface{} {
	if strength == 0 {
		return nil
	}
	return strength
}

func scanRelationship(row rowScanner) (*types.Relationship, error) {
	var (
		rel         types.Relationship
		startedDate sql.NullTime
		notes       sql.NullString
		strength    sql.NullInt64
	)
	err := row.Scan(&rel.ID, &rel.PersonA, &rel.PersonB, &rel.TypeID, &rel.TypeName,
		&startedDate, &notes, &strength, &rel.AutoCreated, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rel.StartedDate = timePtr(startedDate)
	rel.Notes = notes.String
	rel.Strength = int(strength.Int64)
	return &rel, nil
}
