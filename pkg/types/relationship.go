package types

import "time"

// Relationship is a directed edge between two people, read as
// "PersonA is <type name> to PersonB".
//
// Every user-authored edge whose type has a resolvable, auto-create-enabled
// inverse is shadowed by exactly one mirror edge in the opposite direction,
// maintained by the inverse-sync engine within the same transaction as the
// triggering write.
type Relationship struct {
	ID       string `json:"id"`        // Unique identifier (format: rel:uuid)
	PersonA  string `json:"person_a"`  // Source person ID
	PersonB  string `json:"person_b"`  // Target person ID
	TypeID   string `json:"type_id"`   // RelationshipType ID
	TypeName string `json:"type_name"` // Denormalized type name for display (read-only)

	// Optional edge properties, copied onto the mirror edge at creation.
	StartedDate *time.Time `json:"started_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Strength    int        `json:"strength,omitempty"` // Intended range 1-5; documented, not enforced

	// AutoCreated is true iff this edge was synthesized by the inverse-sync
	// engine. Auto-created edges never spawn further mirrors; this flag is
	// the recursion guard and survives restarts because it is persisted.
	AutoCreated bool `json:"auto_created"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
