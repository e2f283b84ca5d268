// Package storage provides composable storage interfaces for LifeGraph.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. Both the SQLite and the
// PostgreSQL backends implement the full Store interface.
package storage

import (
	"context"

	"github.com/scrypster/lifegraph/pkg/types"
)

// PersonStore provides CRUD operations for the person directory.
type PersonStore interface {
	// CreatePerson inserts a new person. The ID must be set by the caller.
	CreatePerson(ctx context.Context, p *types.Person) error

	// GetPerson retrieves a person by ID, including inactive ones.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// ListPeople retrieves people with pagination and filtering.
	// Inactive people are excluded unless opts.IncludeInactive is set.
	ListPeople(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Person], error)

	// UpdatePerson modifies an existing person. When the update sets IsOwner,
	// any previous owner is demoted in the same transaction so that at most
	// one person holds the owner flag.
	UpdatePerson(ctx context.Context, p *types.Person) error

	// DeactivatePerson soft-deletes a person by clearing is_active.
	DeactivatePerson(ctx context.Context, id string) error

	// DeletePerson hard-deletes a person. Relationships, memories, and life
	// events referencing the person are removed by FK cascade.
	DeletePerson(ctx context.Context, id string) error
}

// RelationshipTypeStore is the registry of relationship kinds.
type RelationshipTypeStore interface {
	// CreateType inserts a catalog entry. Symmetric types with an empty
	// inverse_name are normalized to be their own inverse before insert.
	// Returns ErrDuplicate when the name is taken.
	CreateType(ctx context.Context, t *types.RelationshipType) error

	// GetType retrieves a type by ID.
	GetType(ctx context.Context, id string) (*types.RelationshipType, error)

	// FindTypeByName performs a case-sensitive exact lookup by name.
	// Returns ErrNotFound when no type carries the name.
	FindTypeByName(ctx context.Context, name string) (*types.RelationshipType, error)

	// ListTypes returns the full catalog sorted by category then name.
	ListTypes(ctx context.Context) ([]*types.RelationshipType, error)

	// UpdateType modifies a catalog entry. Toggling auto_create_inverse off
	// does not retroactively remove mirrors created while it was on.
	UpdateType(ctx context.Context, t *types.RelationshipType) error

	// DeleteType removes an unreferenced catalog entry. Returns ErrTypeInUse
	// when any relationship still references the type.
	DeleteType(ctx context.Context, id string) error

	// SeedTypes bulk-upserts catalog entries keyed on name. Existing entries
	// are updated in place; their IDs are preserved.
	SeedTypes(ctx context.Context, seed []types.RelationshipType) error
}

// RelationshipStore persists directed edges between people and keeps the
// bidirectional mirror invariant: creation and deletion run the inverse-sync
// engine within the same transaction as the triggering write, so a mirror
// failure rolls the primary write back.
type RelationshipStore interface {
	// CreateRelationship validates the edge (no self-relationships, both
	// people and the type must exist), inserts it, and lets the inverse-sync
	// engine synthesize the mirror edge in the same transaction.
	// Returns ErrSelfRelationship, ErrDuplicate, or ErrInvalidInput.
	CreateRelationship(ctx context.Context, rel *types.Relationship) error

	// GetRelationship retrieves an edge by ID.
	GetRelationship(ctx context.Context, id string) (*types.Relationship, error)

	// ListRelationships retrieves edges with pagination. opts.PersonID
	// matches either end of the edge.
	ListRelationships(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Relationship], error)

	// DeleteRelationship removes an edge and its mirror (if any) atomically.
	DeleteRelationship(ctx context.Context, id string) error
}

// MemoryStore provides CRUD operations for memories.
type MemoryStore interface {
	// CreateMemory inserts a new memory with tagging status pending.
	CreateMemory(ctx context.Context, m *types.Memory) error

	// GetMemory retrieves a memory by ID.
	GetMemory(ctx context.Context, id string) (*types.Memory, error)

	// ListMemories retrieves memories with pagination and filtering.
	ListMemories(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Memory], error)

	// UpdateMemory modifies an existing memory.
	UpdateMemory(ctx context.Context, m *types.Memory) error

	// DeleteMemory removes a memory and its embedding.
	DeleteMemory(ctx context.Context, id string) error

	// UpdateTagging updates the async tag-suggestion state of a memory.
	// Suggested tags are merged into the existing tag set; user-authored
	// tags are never removed.
	UpdateTagging(ctx context.Context, id string, status types.TaggingStatus, tags []string, taggingErr string) error
}

// LifeEventStore provides CRUD operations for life events.
type LifeEventStore interface {
	CreateEvent(ctx context.Context, e *types.LifeEvent) error
	GetEvent(ctx context.Context, id string) (*types.LifeEvent, error)

	// ListEventsByPerson returns a person's events sorted by happened_on.
	ListEventsByPerson(ctx context.Context, personID string) ([]*types.LifeEvent, error)

	UpdateEvent(ctx context.Context, e *types.LifeEvent) error
	DeleteEvent(ctx context.Context, id string) error
}

// EmbeddingProvider manages memory-content embeddings for similarity search.
type EmbeddingProvider interface {
	// StoreEmbedding stores (or replaces) the embedding for a memory.
	StoreEmbedding(ctx context.Context, memoryID string, embedding []float32, model string) error

	// SimilarMemories returns up to limit memories closest to the given
	// memory's embedding, excluding the memory itself. Returns an empty
	// slice (not an error) when the memory has no embedding yet.
	SimilarMemories(ctx context.Context, memoryID string, limit int) ([]SimilarMemory, error)

	// DeleteEmbedding removes the embedding for a memory.
	DeleteEmbedding(ctx context.Context, memoryID string) error
}

// Store is the full storage surface a backend must provide.
type Store interface {
	PersonStore
	RelationshipTypeStore
	RelationshipStore
	MemoryStore
	LifeEventStore
	EmbeddingProvider

	// Stats returns dataset counts for the stats endpoint.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases any resources held by the store.
	Close() error
}
