package types

import "time"

// Person represents a contact tracked by LifeGraph.
// A person is the node type of the relationship graph; relationships,
// memories, and life events all hang off a person by ID.
type Person struct {
	// Core identification fields
	ID       string `json:"id"`                 // Unique identifier (format: per:uuid)
	Name     string `json:"name"`               // Display name (required)
	Nickname string `json:"nickname,omitempty"` // Informal name
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"` // Free-form city/country

	// Optional biography
	Birthday *time.Time `json:"birthday,omitempty"`
	Notes    string     `json:"notes,omitempty"` // Free-form notes about the person

	// Flags
	IsActive bool `json:"is_active"` // Soft-delete flag; inactive people are hidden from listings
	IsOwner  bool `json:"is_owner"`  // True for the CRM owner; at most one person holds this

	// Classification
	Tags []string `json:"tags,omitempty"` // User-defined tags

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
