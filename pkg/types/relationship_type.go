package types

import "time"

// Relationship type categories.
const (
	CategoryFamily       = "family"
	CategoryProfessional = "professional"
	CategorySocial       = "social"
	CategoryCustom       = "custom"
)

// RelationshipType is a catalog entry describing a kind of relationship
// (e.g. "mother", "friend", "manager"). The catalog is seeded with a fixed
// set of common types and can be extended with custom entries.
type RelationshipType struct {
	ID          string `json:"id"`                     // Unique identifier (format: rt:uuid)
	Name        string `json:"name"`                   // Unique name, e.g. "mother"
	InverseName string `json:"inverse_name,omitempty"` // Name of the inverse type, e.g. "child"
	Category    string `json:"category"`               // family, professional, social, custom
	Description string `json:"description,omitempty"`

	// IsSymmetric marks types that read identically in both directions
	// (e.g. "friend"). Symmetric types resolve to themselves as inverse,
	// regardless of any stored inverse_name.
	IsSymmetric bool `json:"is_symmetric"`

	// AutoCreateInverse gates the inverse-sync engine. When false, creating
	// a relationship of this type never synthesizes a mirror edge.
	AutoCreateInverse bool `json:"auto_create_inverse"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize applies catalog invariants before persistence: a symmetric type
// with no inverse name is its own inverse, and an unset category defaults
// to custom.
func (t *RelationshipType) Normalize() {
	if t.IsSymmetric && t.InverseName == "" {
		t.InverseName = t.Name
	}
	if t.Category == "" {
		t.Category = CategoryCustom
	}
}
