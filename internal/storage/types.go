package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate indicates that a unique constraint was violated, e.g. a
	// second relationship with the same ordered pair and type, or a second
	// relationship type with an already-taken name.
	ErrDuplicate = errors.New("duplicate resource")

	// ErrSelfRelationship indicates an attempt to relate a person to themselves.
	ErrSelfRelationship = errors.New("person cannot have a relationship with themselves")

	// ErrTypeInUse indicates an attempt to delete a relationship type that is
	// still referenced by at least one relationship. Type deletion is blocked,
	// never cascaded, so user relationship data is never silently destroyed.
	ErrTypeInUse = errors.New("relationship type is still in use")
)

// PaginatedResult represents a paginated result set with type safety using generics.
type PaginatedResult[T any] struct {
	// Items is the slice of results for the current page.
	Items []T

	// Total is the total number of items across all pages.
	Total int

	// Page is the current page number (1-indexed).
	Page int

	// PageSize is the number of items per page.
	PageSize int

	// HasMore indicates whether there are more pages available.
	HasMore bool
}

// ListOptions provides pagination and filtering options for list operations.
type ListOptions struct {
	// Page is the page number to retrieve (1-indexed, default: 1).
	Page int

	// Limit is the number of items per page (default: 20, max: 100).
	Limit int

	// SortBy specifies the field to sort by (e.g., "created_at", "name").
	SortBy string

	// SortOrder specifies the sort direction ("asc" or "desc", default: "desc").
	SortOrder string

	// PersonID restricts results to rows referencing this person. For
	// relationships it matches either end of the edge.
	PersonID string

	// Query is a case-insensitive substring match against name-like fields
	// (person name/nickname/email, memory title/content).
	Query string

	// Tag restricts results to rows carrying this tag.
	Tag string

	// IncludeInactive includes soft-deleted (inactive) people in results.
	// By default only active people are returned.
	IncludeInactive bool

	// IncludeAutoCreated includes engine-synthesized mirror edges when listing
	// relationships. Defaults to true; set ExcludeAutoCreated to drop them.
	ExcludeAutoCreated bool
}

// Normalize applies defaults and validates the ListOptions.
func (o *ListOptions) Normalize() {
	// Whitelist validation for SortBy to prevent SQL injection
	allowedSortFields := map[string]bool{
		"created_at":  true,
		"updated_at":  true,
		"id":          true,
		"name":        true,
		"happened_on": true,
	}

	if !allowedSortFields[o.SortBy] {
		o.SortBy = "created_at"
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "desc"
	}

	if o.Page < 1 {
		o.Page = 1
	}

	if o.Limit < 1 {
		o.Limit = 20
	}

	if o.Limit > 100 {
		o.Limit = 100
	}
}

// Offset calculates the offset for SQL queries based on page and limit.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Stats summarizes the dataset for the /api/stats endpoint.
type Stats struct {
	People            int `json:"people"`
	Relationships     int `json:"relationships"`
	RelationshipTypes int `json:"relationship_types"`
	Memories          int `json:"memories"`
	LifeEvents        int `json:"life_events"`
	PendingTagging    int `json:"pending_tagging"`
}

// SimilarMemory is a memory surfaced by embedding similarity, with its score.
type SimilarMemory struct {
	MemoryID string  `json:"memory_id"`
	Score    float64 `json:"score"` // Cosine similarity, higher is closer
}
