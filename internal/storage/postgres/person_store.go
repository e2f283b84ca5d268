package postgres

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

// CreatePerson inserts a new person. Promoting a new owner demotes the
// previous owner in the same transaction.
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.IsOwner {
		if _, err := tx.ExecContext(ctx, "UPDATE people SET is_owner = FALSE WHERE is_owner = TRUE"); err != nil {
			return fmt.Errorf("postgres: demote previous owner: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO people (id, name, nickname, email, phone, location, birthday, notes,
			is_active, is_owner, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, nullableString(p.Nickname), nullableString(p.Email),
		nullableString(p.Phone), nullableString(p.Location), nullableTime(p.Birthday),
		nullableString(p.Notes), p.IsActive, p.IsOwner, tagsJSON, p.CreatedAt, p.UpdatedAt)
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

	row := s.db.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people WHERE id = $1", id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get person: %w", err)
	}
	return p, nil
}

// ListPeople retrieves people with pagination and filtering. Search matches
// name, nickname, and email case-insensitively.
func (s *Store) ListPeople(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	opts.Normalize()

	where := "WHERE TRUE"
	args := []interface{}{}

	if !opts.IncludeInactive {
		where += " AND is_active = TRUE"
	}
	if opts.Query != "" {
		args = append(args, "%"+opts.Query+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (name ILIKE $%d OR nickname ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	if opts.Tag != "" {
		args = append(args, `%"`+opts.Tag+`"%`)
		where += fmt.Sprintf(" AND tags LIKE $%d", len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("postgres: count people: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM people %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		personColumns, where, opts.SortBy, opts.SortOrder, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list people: %w", err)
	}
	defer rows.Close()

	items := []types.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan person: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate people: %w", err)
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
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	if p.IsOwner {
		if _, err := tx.ExecContext(ctx,
			"UPDATE people SET is_owner = FALSE WHERE is_owner = TRUE AND id <> $1", p.ID); err != nil {
			return fmt.Errorf("postgres: demote previous owner: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE people SET name = $1, nickname = $2, email = $3, phone = $4, location = $5,
			birthday = $6, notes = $7, is_active = $8, is_owner = $9, tags = $10, updated_at = $11
		WHERE id = $12`,
		p.Name, nullableString(p.Nickname), nullableString(p.Email), nullableString(p.Phone),
		nullableString(p.Location), nullableTime(p.Birthday), nullableString(p.Notes),
		p.IsActive, p.IsOwner, tagsJSON, p.UpdatedAt, p.ID)
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

// DeactivatePerson soft-deletes a person by clearing is_active.
func (s *Store) DeactivatePerson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE people SET is_active = FALSE, updated_at = $1 WHERE id = $2", time.Now(), id)
	if err != nil {
		return fmt.Errorf("postgres: deactivate person: %w", err)
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

// DeletePerson hard-deletes a person; dependent rows go with it by FK cascade.
func (s *Store) DeletePerson(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM people WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("postgres: delete person: %w", err)
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
