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

const memoryColumns = `id, person_id, title, content, happened_on, tags,
	tagging_status, tagging_error, created_at, updated_at`

// CreateMemory inserts a new memory with tagging status pending.
func (s *Store) CreateMemory(ctx context.Context, m *types.Memory) error {
	if m == nil {
		return storage.ErrInvalidInput
	}
	if m.ID == "" {
		return fmt.Errorf("%w: memory ID is required", storage.ErrInvalidInput)
	}
	if m.PersonID == "" {
		return fmt.Errorf("%w: person_id is required", storage.ErrInvalidInput)
	}
	if m.Content == "" {
		return fmt.Errorf("%w: memory content is required", storage.ErrInvalidInput)
	}

	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	if m.TaggingStatus == "" {
		m.TaggingStatus = types.TaggingPending
	}

	tagsJSON, err := marshalTags(m.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (id, person_id, title, content, happened_on, tags,
			tagging_status, tagging_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.PersonID, m.Title, m.Content, timeVal(m.HappenedOn), tagsJSON,
		m.TaggingStatus, m.TaggingError, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// GetMemory retrieves a memory by ID.
func (s *Store) GetMemory(ctx context.Context, id string) (*types.Memory, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memoryColumns+" FROM memories WHERE id = ?", id)
	m, err := scanMemory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get memory: %w", err)
	}
	return m, nil
}

// ListMemories retrieves memories with pagination and filtering.
func (s *Store) ListMemories(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Memory], error) {
	opts.Normalize()

	where := "WHERE 1=1"
	args := []interface{}{}

	if opts.PersonID != "" {
		where += " AND person_id = ?"
		args = append(args, opts.PersonID)
	}
	if opts.Query != "" {
		where += " AND (title LIKE ? OR content LIKE ?)"
		pattern := "%" + opts.Query + "%"
		args = append(args, pattern, pattern)
	}
	if opts.Tag != "" {
		where += " AND tags LIKE ?"
		args = append(args, `%"`+opts.Tag+`"%`)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: count memories: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM memories %s ORDER BY %s %s LIMIT ? OFFSET ?",
		memoryColumns, where, opts.SortBy, opts.SortOrder)
	args = append(args, opts.Limit, opts.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list memories: %w", err)
	}
	defer rows.Close()

	items := []types.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan memory: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate memories: %w", err)
	}

	return &storage.PaginatedResult[types.Memory]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// UpdateMemory modifies an existing memory.
func (s *Store) UpdateMemory(ctx context.Context, m *types.Memory) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: memory ID is required", storage.ErrInvalidInput)
	}
	if m.Content == "" {
		return fmt.Errorf("%w: memory content is required", storage.ErrInvalidInput)
	}

	m.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(m.Tags)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE memories SET title = ?, content = ?, happened_on = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		m.Title, m.Content, timeVal(m.HappenedOn), tagsJSON, m.UpdatedAt, m.ID)
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

// DeleteMemory removes a memory; its embedding goes with it by FK cascade.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete memory: %w", err)
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

// UpdateTagging updates the async tag-suggestion state of a memory. Suggested
// tags are merged into the existing set; user-authored tags are never removed.
func (s *Store) UpdateTagging(ctx context.Context, id string, status types.TaggingStatus, tags []string, taggingErr string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	var existingRaw sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT tags FROM memories WHERE id = ?", id).Scan(&existingRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("sqlite: load tags: %w", err)
	}

	existing, err := unmarshalTags(existingRaw)
	if err != nil {
		return err
	}
	merged := mergeTags(existing, tags)

	tagsJSON, err := marshalTags(merged)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE memories SET tags = ?, tagging_status = ?, tagging_error = ?, updated_at = ?
		WHERE id = ?`,
		tagsJSON, status, taggingErr, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: update tagging: %w", err)
	}

	return tx.Commit()
}

// mergeTags unions two tag lists, preserving the order of first appearance.
func mergeTags(existing, suggested []string) []string {
	seen := make(map[string]bool, len(existing)+len(suggested))
	var merged []string
	for _, lists := range [][]string{existing, suggested} {
		for _, tag := range lists {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	return merged
}

func scanMemory(row rowScanner) (*types.Memory, error) {
	var (
		m          types.Memory
		title      sql.NullString
		happenedOn sql.NullTime
		tags       sql.NullString
		tagErr     sql.NullString
	)
	err := row.Scan(&m.ID, &m.PersonID, &title, &m.Content, &happenedOn, &tags,
		&m.TaggingStatus, &tagErr, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Title = title.String
	m.HappenedOn = timePtr(happenedOn)
	m.TaggingError = tagErr.String

	m.Tags, err = unmarshalTags(tags)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
