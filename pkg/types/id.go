package types

import (
	"fmt"

	"github.com/google/uuid"
)

// newID builds a prefixed short identifier like "per:1a2b3c4d".
// Eight hex characters of a v4 UUID are enough for a single-user dataset
// while keeping IDs readable in logs and URLs.
func newID(prefix string) string {
	return fmt.Sprintf("%s:%s", prefix, uuid.New().String()[:8])
}

// NewPersonID returns a fresh person identifier.
func NewPersonID() string { return newID("per") }

// NewRelationshipID returns a fresh relationship identifier.
func NewRelationshipID() string { return newID("rel") }

// NewRelationshipTypeID returns a fresh relationship type identifier.
func NewRelationshipTypeID() string { return newID("rt") }

// NewMemoryID returns a fresh memory identifier.
func NewMemoryID() string { return newID("mem") }

// NewLifeEventID returns a fresh life event identifier.
func NewLifeEventID() string { return newID("evt") }
