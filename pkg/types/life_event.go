package types

import "time"

// Life event kinds.
const (
	EventBirth      = "birth"
	EventWedding    = "wedding"
	EventGraduation = "graduation"
	EventMove       = "move"
	EventJobChange  = "job_change"
	EventCustom     = "custom"
)

// LifeEvent is a dated milestone in a person's life (wedding, move, new job).
// Unlike memories, life events are structured and render on a timeline.
type LifeEvent struct {
	ID          string     `json:"id"`        // Unique identifier (format: evt:uuid)
	PersonID    string     `json:"person_id"` // Person this event belongs to
	Kind        string     `json:"kind"`      // One of the Event* constants
	Title       string     `json:"title"`
	HappenedOn  *time.Time `json:"happened_on,omitempty"`
	Description string     `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidKind reports whether k is a recognized life event kind.
func ValidKind(k string) bool {
	switch k {
	case EventBirth, EventWedding, EventGraduation, EventMove, EventJobChange, EventCustom:
		return true
	}
	return false
}
