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

const eventColumns = `id, person_id, kind, title, happened_on, description, created_at, updated_at`

// CreateEvent inserts a new life event.
func (s *Store) CreateEvent(ctx context.Context, e *types.LifeEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}
	if e.ID == "" {
		return fmt.Errorf("%w: event ID is required", storage.ErrInvalidInput)
	}
	if e.PersonID == "" {
		return fmt.Errorf("%w: person_id is required", storage.ErrInvalidInput)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: event title is required", storage.ErrInvalidInput)
	}
	if !types.ValidKind(e.Kind) {
		return fmt.Errorf("%w: unknown event kind %q", storage.ErrInvalidInput, e.Kind)
	}

	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO life_events (id, person_id, kind, title, happened_on, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PersonID, e.Kind, e.Title, timeVal(e.HappenedOn), e.Description,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// GetEvent retrieves a life event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*types.LifeEvent, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM life_events WHERE id = ?", id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get life event: %w", err)
	}
	return e, nil
}

// ListEventsByPerson returns a person's events sorted by happened_on, oldest
// first; undated events sort last.
func (s *Store) ListEventsByPerson(ctx context.Context, personID string) ([]*types.LifeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM life_events WHERE person_id = ?
		ORDER BY happened_on IS NULL, happened_on ASC`, personID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list life events: %w", err)
	}
	defer rows.Close()

	var events []*types.LifeEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan life event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEvent modifies an existing life event.
func (s *Store) UpdateEvent(ctx context.Context, e *types.LifeEvent) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("%w: event ID is required", storage.ErrInvalidInput)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: event title is required", storage.ErrInvalidInput)
	}
	if !types.ValidKind(e.Kind) {
		return fmt.Errorf("%w: unknown event kind %q", storage.ErrInvalidInput, e.Kind)
	}

	e.UpdatedAt = time.Now()

	result, err := s.db.ExecContext(ctx, `
		UPDATE life_events SET kind = ?, title = ?, happened_on = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		e.Kind, e.Title, timeVal(e.HappenedOn), e.Description, e.UpdatedAt, e.ID)
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

// DeleteEvent removes a life event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM life_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete life event: %w", err)
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

func scanEvent(row rowScanner) (*types.LifeEvent, error) {
	var (
		e           types.LifeEvent
		happenedOn  sql.NullTime
		description sql.NullString
	)
	err := row.Scan(&e.ID, &e.PersonID, &e.Kind, &e.Title, &happenedOn, &description,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.HappenedOn = timePtr(happenedOn)
	e.Description = description.String
	return &e, nil
}
