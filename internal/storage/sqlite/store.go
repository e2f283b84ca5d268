// Package sqlite provides the SQLite implementation of the LifeGraph storage
// interfaces. It is the default backend: zero-setup, single file, CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/lifegraph/internal/storage"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New opens a SQLite database, configures WAL mode, and creates the schema.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Using a single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable WAL mode for better read concurrency (readers don't block writers).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	// Set busy timeout so that callers wait instead of getting an immediate
	// SQLITE_BUSY error when the connection is held by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to set busy timeout: %w", err)
	}

	// Foreign keys are off by default in SQLite; the cascade and RESTRICT
	// rules in the schema depend on them.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// GetDB exposes the underlying database connection for the settings service.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats returns dataset counts for the stats endpoint.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	stats := &storage.Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM people WHERE is_active = 1", &stats.People},
		{"SELECT COUNT(*) FROM relationships", &stats.Relationships},
		{"SELECT COUNT(*) FROM relationship_types", &stats.RelationshipTypes},
		{"SELECT COUNT(*) FROM memories", &stats.Memories},
		{"SELECT COUNT(*) FROM life_events", &stats.LifeEvents},
		{"SELECT COUNT(*) FROM memories WHERE tagging_status IN ('pending', 'processing')", &stats.PendingTagging},
	}

	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("sqlite: stats query failed: %w", err)
		}
	}

	return stats, nil
}

// querier abstracts *sql.DB and *sql.Tx so row helpers work in both contexts.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// translateConstraintErr maps SQLite constraint violations onto the storage
// sentinel errors. modernc.org/sqlite reports these as plain error strings.
func translateConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", storage.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %v", storage.ErrSelfRelationship, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return err
}

// marshalTags serializes a tag list to JSON, mapping empty to NULL.
func marshalTags(tags []string) (interface{}, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(data), nil
}

// timeVal converts an optional time pointer to a driver value.
func timeVal(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// timePtr converts a nullable time column back to an optional pointer.
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// unmarshalTags deserializes a JSON tag column, tolerating NULL.
func unmarshalTags(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return tags, nil
}
