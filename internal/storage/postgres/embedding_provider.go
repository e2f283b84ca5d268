package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/scrypster/lifegraph/internal/storage"
)

// StoreEmbedding stores (or replaces) the embedding for a memory. The vector
// is always stored as JSON text for portability; when pgvector is available it
// is also written to embedding_vec so similarity runs inside the database.
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
		return fmt.Errorf("postgres: marshal embedding: %w", err)
	}

	if s.pgvectorAvailable {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO embeddings (memory_id, embedding, dimension, model, embedding_vec, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT(memory_id) DO UPDATE SET
				embedding = EXCLUDED.embedding,
				dimension = EXCLUDED.dimension,
				model = EXCLUDED.model,
				embedding_vec = EXCLUDED.embedding_vec,
				updated_at = NOW()`,
			memoryID, string(data), len(embedding), model, pgvector.NewVector(embedding))
		if err != nil {
			return translateConstraintErr(err)
		}
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (memory_id, embedding, dimension, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT(memory_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			dimension = EXCLUDED.dimension,
			model = EXCLUDED.model,
			updated_at = NOW()`,
		memoryID, string(data), len(embedding), model)
	if err != nil {
		return translateConstraintErr(err)
	}
	return nil
}

// SimilarMemories returns up to limit memories closest to the given memory's
// embedding by cosine similarity, excluding the memory itself. Uses a native
// pgvector query when available, otherwise scans embeddings in process.
// Returns an empty slice when the start memory has no embedding yet.
func (s *Store) SimilarMemories(ctx context.Context, memoryID string, limit int) ([]storage.SimilarMemory, error) {
	if limit < 1 {
		limit = 5
	}

	if s.pgvectorAvailable {
		return s.similarMemoriesPgvector(ctx, memoryID, limit)
	}
	return s.similarMemoriesScan(ctx, memoryID, limit)
}

func (s *Store) similarMemoriesPgvector(ctx context.Context, memoryID string, limit int) ([]storage.SimilarMemory, error) {
	// <=> is cosine distance; similarity = 1 - distance.
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.memory_id, 1 - (e.embedding_vec <=> t.embedding_vec) AS score
		FROM embeddings e, embeddings t
		WHERE t.memory_id = $1
		  AND e.memory_id <> $1
		  AND e.embedding_vec IS NOT NULL
		  AND t.embedding_vec IS NOT NULL
		  AND e.dimension = t.dimension
		ORDER BY e.embedding_vec <=> t.embedding_vec
		LIMIT $2`, memoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: similar memories: %w", err)
	}
	defer rows.Close()

	results := []storage.SimilarMemory{}
	for rows.Next() {
		var sm storage.SimilarMemory
		if err := rows.Scan(&sm.MemoryID, &sm.Score); err != nil {
			return nil, fmt.Errorf("postgres: scan similarity row: %w", err)
		}
		results = append(results, sm)
	}
	return results, rows.Err()
}

func (s *Store) similarMemoriesScan(ctx context.Context, memoryID string, limit int) ([]storage.SimilarMemory, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding FROM embeddings WHERE memory_id = $1", memoryID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []storage.SimilarMemory{}, nil
		}
		return nil, fmt.Errorf("postgres: load embedding: %w", err)
	}

	var target []float32
	if err := json.Unmarshal([]byte(raw), &target); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT memory_id, embedding FROM embeddings WHERE memory_id <> $1", memoryID)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan embeddings: %w", err)
	}
	defer rows.Close()

	var results []storage.SimilarMemory
	for rows.Next() {
		var (
			id   string
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("postgres: scan embedding row: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(data), &vec); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal embedding for %s: %w", id, err)
		}
		if len(vec) != len(target) {
			continue
		}

		results = append(results, storage.SimilarMemory{
			MemoryID: id,
			Score:    cosineSimilarity(target, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate embeddings: %w", err)
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
	_, err := s.db.ExecContext(ctx, "DELETE FROM embeddings WHERE memory_id = $1", memoryID)
	if err != nil {
		return fmt.Errorf("postgres: delete embedding: %w", err)
	}
	return nil
}

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
