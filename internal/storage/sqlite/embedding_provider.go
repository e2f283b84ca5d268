package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
)

// StoreEmbedding stores (or replaces) the embedding for a memory. The vector
// is JSON-serialized; SQLite has no native vector type and the dataset of a
// personal CRM is small enough for in-process similarity scans.
func (s *Store) StoreEmbedding(ctx context.Context, memoryID string, embedding []float32, model string) error {
	if memoryID == "" {
		return fmt.Errorf("%w: memory ID is required", storage.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", storage.ErrInvalidInput)
	}
	if model == "" {
		return fmt.Errorf("%w: model is required", storage.ErrInvalidInput)
	}

	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("sqlite: marshal embedding: %w", err)
	}

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (memory_id, embedding, dimension, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(memory_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			model = excluded.model,
			updated_at = excluded.updated_at`,
		memoryID, string(data), len(embedding), model, now, now)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// SimilarMemories returns up to limit memories closest to the given memory's
// embedding by cosine similarity, excluding the memory itself. Memories
// without embeddings never appear. Returns an empty slice when the start
// memory has no embedding yet.
func (s *Store) SimilarMemories(ctx context.Context, memoryID string, limit int) ([]storage.SimilarMemory, error) {
	if limit < 1 {
		limit = 5
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding FROM embeddings WHERE memory_id = ?", memoryID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []storage.SimilarMemory{}, nil
		}
		return nil, fmt.Errorf("sqlite: load embedding: %w", err)
	}

	var target []float32
	if err := json.Unmarshal([]byte(raw), &target); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT memory_id, embedding FROM embeddings WHERE memory_id <> ?", memoryID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: scan embeddings: %w", err)
	}
	defer rows.Close()

	var results []storage.SimilarMemory
	for rows.Next() {
		var (
			id   string
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("sqlite: scan embedding row: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(data), &vec); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal embedding for %s: %w", id, err)
		}
		if len(vec) != len(target) {
			continue // different model dimensions, not comparable
		}

		results = append(results, storage.SimilarMemory{
			MemoryID: id,
			Score:    cosineSimilarity(target, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate embeddings: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []storage.SimilarMemory{}
	}
	return results, nil
}

// DeleteEmbedding removes the embedding for a memory.
func (s *Store) DeleteEmbedding(ctx context.Context, memoryID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE memory_id = ?", memoryID)
	if err != nil {
		return fmt.Errorf("sqlite: delete embedding: %w", err)
	}
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 for zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
