// Package engine contains the reactive logic that keeps the relationship
// graph bidirectionally consistent, plus the async AI tagging worker.
//
// The inverse-sync engine is deliberately separated from the SQL backends:
// it speaks only through the TxStore interface, which both backends implement
// over their active transaction. This keeps the engine unit-testable with an
// in-memory fake and makes the all-or-nothing transactional contract explicit
// instead of relying on implicit event dispatch.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

// TxStore is the minimal transactional surface the inverse-sync engine needs.
// All four methods must operate within the same database transaction as the
// triggering relationship write, so a mirror failure rolls everything back.
type TxStore interface {
	// FindTypeByName performs a case-sensitive exact lookup by name.
	// Returns storage.ErrNotFound when no type carries the name.
	FindTypeByName(ctx context.Context, name string) (*types.RelationshipType, error)

	// EdgeExists reports whether an edge (personA, personB, typeID) exists.
	EdgeExists(ctx context.Context, personA, personB, typeID string) (bool, error)

	// InsertEdge inserts a relationship row as-is (no validation, no hooks).
	InsertEdge(ctx context.Context, rel *types.Relationship) error

	// DeleteEdge removes the edge (personA, personB, typeID) if present.
	// Deleting an absent edge is not an error.
	DeleteEdge(ctx context.Context, personA, personB, typeID string) error
}

// ResolveInverse determines the inverse type of t.
//
// Symmetric types are their own inverse; the is_symmetric flag takes
// precedence over any stored inverse_name. For asymmetric types the inverse
// is looked up by name; when the inverse_name matches no catalog entry the
// inverse is simply unavailable and (nil, nil) is returned. A missing inverse
// is expected steady-state for custom one-off types, not an error.
func ResolveInverse(ctx context.Context, tx TxStore, t *types.RelationshipType) (*types.RelationshipType, error) {
	if t.IsSymmetric {
		return t, nil
	}
	if t.InverseName == "" {
		return nil, nil
	}

	inverse, err := tx.FindTypeByName(ctx, t.InverseName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("inverse-sync: resolve inverse of %q: %w", t.Name, err)
	}
	return inverse, nil
}

// AfterCreate restores the mirror invariant after a relationship insert.
// It must run inside the transaction that inserted created.
//
// The engine does nothing when:
//   - created is itself auto-created (recursion guard: a synthesized edge
//     never spawns another one),
//   - the type has auto_create_inverse disabled,
//   - the inverse type is unresolvable,
//   - the reverse edge already exists (idempotence: covers both directions
//     being created manually, and symmetric types where the reverse row may
//     have been authored first).
//
// Otherwise it inserts the mirror edge (b, a, inverseType), copying
// started_date, notes, and strength from the primary edge and marking it
// auto_created.
func AfterCreate(ctx context.Context, tx TxStore, created *types.Relationship, edgeType *types.RelationshipType) error {
	if created.AutoCreated {
		return nil
	}
	if !edgeType.AutoCreateInverse {
		return nil
	}

	inverse, err := ResolveInverse(ctx, tx, edgeType)
	if err != nil {
		return err
	}
	if inverse == nil {
		return nil
	}

	exists, err := tx.EdgeExists(ctx, created.PersonB, created.PersonA, inverse.ID)
	if err != nil {
		return fmt.Errorf("inverse-sync: check reverse edge: %w", err)
	}
	if exists {
		return nil
	}

	now := time.Now()
	mirror := &types.Relationship{
		ID:          types.NewRelationshipID(),
		PersonA:     created.PersonB,
		PersonB:     created.PersonA,
		TypeID:      inverse.ID,
		TypeName:    inverse.Name,
		StartedDate: created.StartedDate,
		Notes:       created.Notes,
		Strength:    created.Strength,
		AutoCreated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := tx.InsertEdge(ctx, mirror); err != nil {
		return fmt.Errorf("inverse-sync: insert mirror edge: %w", err)
	}
	return nil
}

// BeforeDelete removes the mirror of an edge about to be deleted. It must run
// inside the transaction that deletes doomed, before or after the primary
// delete — the pair is removed atomically as a unit either way.
//
// The mirror is removed with a plain DeleteEdge rather than going back
// through the service path, so the deletion hook never re-fires and the
// recursion terminates by construction. At most one mirror can exist thanks
// to the (person_a, person_b, type) uniqueness constraint.
func BeforeDelete(ctx context.Context, tx TxStore, doomed *types.Relationship, edgeType *types.RelationshipType) error {
	inverse, err := ResolveInverse(ctx, tx, edgeType)
	if err != nil {
		return err
	}
	if inverse == nil {
		return nil
	}

	if err := tx.DeleteEdge(ctx, doomed.PersonB, doomed.PersonA, inverse.ID); err != nil {
		return fmt.Errorf("inverse-sync: delete mirror edge: %w", err)
	}
	return nil
}
