package types

import "time"

// TaggingStatus tracks the async AI tag-suggestion lifecycle for a memory.
type TaggingStatus string

// Tagging status values.
const (
	TaggingPending    TaggingStatus = "pending"
	TaggingProcessing TaggingStatus = "processing"
	TaggingCompleted  TaggingStatus = "completed"
	TaggingFailed     TaggingStatus = "failed"
	TaggingSkipped    TaggingStatus = "skipped"
)

// Memory is a journal entry about a person: a conversation, a shared moment,
// something worth remembering. Memories are the unit of AI enrichment
// (tag suggestion and embedding generation).
type Memory struct {
	ID       string `json:"id"`        // Unique identifier (format: mem:uuid)
	PersonID string `json:"person_id"` // Person this memory is about
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"` // Free-text body (required)

	// HappenedOn is the date the remembered event took place, as opposed to
	// CreatedAt which is when it was written down.
	HappenedOn *time.Time `json:"happened_on,omitempty"`

	Tags          []string      `json:"tags,omitempty"`
	TaggingStatus TaggingStatus `json:"tagging_status"`
	TaggingError  string        `json:"tagging_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
