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

const personColumns = `id, name, nickname, email, phone, location, birthday, notes,
	is_active, is_owner, tags, created_at, updated_at`

// CreatePerson inserts a new person.
func (s *Store) CreatePerson(ctx context.Context, p *types.Person) error {
	if p == nil {
		return storage.ErrInvalidInput
	}
	if p.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: person name is required", storage.ErrInvalidInput)
	}

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	p.IsActive = true

	tagsJSON, err := marshalTags(p.Tags)
	if err != nil {
		return err
	}

	// At most one owner: promoting a new owner demotes the previous one in
	// the same transaction.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.IsOwner {
		if _, err := tx.ExecContext(ctx, "UPDATE people SET is_owner = 0 WHERE is_owner = 1"); err != nil {
			return fmt.Errorf("sqlite: demote previous owner: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO people (id, name, nickname, email, phone, location, birthday, notes,
			is_active, is_owner, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Nickname, p.Email, p.Phone, p.Location, timeVal(p.Birthday), p.Notes,
		p.IsActive, p.IsOwner, tagsJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}

	return tx.Commit()
}

// GetPerson retrieves a person by ID, including inactive ones.
func (s *Store) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people WHERE id = ?", id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get person: %w", err)
	}
	return p, nil
}

// ListPeople retrieves people with pagination and filtering.
func (s *Store) ListPeople(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	opts.Normalize()

	where := "WHERE 1=1"
	args := []interface{}{}

	if !opts.IncludeInactive {
		where += " AND is_active = 1"
	}
	if opts.Query != "" {
		where += " AND (name LIKE ? OR nickname LIKE ? OR email LIKE ?)"
		pattern := "%" + opts.Query + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if opts.Tag != "" {
		// Tags are a JSON array; match the quoted element.
		where += " AND tags LIKE ?"
		args = append(args, `%"`+opts.Tag+`"%`)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: count people: %w", err)
	}

	// SortBy/SortOrder are whitelist-validated by Normalize.
	query := fmt.Sprintf("SELECT %s FROM people %s ORDER BY %s %s LIMIT ? OFFSET ?",
		personColumns, where, opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list people: %w", err)
	}
	defer rows.Close()

	items := []types.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan person: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate people: %w", err)
	}

	return &storage.PaginatedResult[types.Person]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// UpdatePerson modifies an existing person.
func (s *Store) UpdatePerson(ctx context.Context, p *types.Person) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: person name is required", storage.ErrInvalidInput)
	}

	p.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(p.Tags)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.IsOwner {
		if _, err := tx.ExecContext(ctx, "UPDATE people SET is_owner = 0 WHERE is_owner = 1 AND id <> ?", p.ID); err != nil {
			return fmt.Errorf("sqlite: demote previous owner: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE people SET name = ?, nickname = ?, email = ?, phone = ?, location = ?,
			birthday = ?, notes = ?, is_active = ?, is_owner = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Nickname, p.Email, p.Phone, p.Location,
		timeVal(p.Birthday), p.Notes, p.IsActive, p.IsOwner, tagsJSON, p.UpdatedAt, p.ID)
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

	return tx.Commit()
}

// DeactivatePerson soft-deletes a person by clearing is_active.
func (s *Store) DeactivatePerson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE people SET is_active = 0, updated_at = ? WHERE id = ?", time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: deactivate person: %w", err)
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

// DeletePerson hard-deletes a person. Relationships, memories, and life events
// referencing the person are removed by FK cascade.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete person: %w", err)
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

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner) (*types.Person, error) {
	var (
		p        types.Person
		nickname sql.NullString
		email    sql.NullString
		phone    sql.NullString
		location sql.NullString
		birthday sql.NullTime
		notes    sql.NullString
		tags     sql.NullString
	)

	err := row.Scan(&p.ID, &p.Name, &nickname, &email, &phone, &location, &birthday, &notes,
		&p.IsActive, &p.IsOwner, &tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Nickname = nickname.String
	p.Email = email.String
	p.Phone = phone.String
	p.Location = location.String
	p.Birthday = timePtr(birthday)
	p.Notes = notes.String

	p.Tags, err = unmarshalTags(tags)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
