package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

func TestCreateType_SymmetricNormalization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := &types.RelationshipType{Name: "friend", IsSymmetric: true}
	if err := store.CreateType(ctx, rt); err != nil {
		t.Fatalf("CreateType() failed: %v", err)
	}

	got, err := store.GetType(ctx, rt.ID)
	if err != nil {
		t.Fatalf("GetType() failed: %v", err)
	}
	if got.InverseName != "friend" {
		t.Errorf("symmetric inverse_name = %q, want %q", got.InverseName, "friend")
	}
	if got.Category != types.CategoryCustom {
		t.Errorf("default category = %q, want %q", got.Category, types.CategoryCustom)
	}
}

func TestCreateType_DuplicateName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateType(ctx, &types.RelationshipType{Name: "friend", IsSymmetric: true}); err != nil {
		t.Fatalf("CreateType() failed: %v", err)
	}
	err := store.CreateType(ctx, &types.RelationshipType{Name: "friend", IsSymmetric: true})
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestFindTypeByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := mustType(t, store, &types.RelationshipType{
		Name: "mentor", InverseName: "mentee", Category: types.CategoryProfessional,
	})

	got, err := store.FindTypeByName(ctx, "mentor")
	if err != nil {
		t.Fatalf("FindTypeByName() failed: %v", err)
	}
	if got.ID != rt.ID {
		t.Errorf("FindTypeByName id = %s, want %s", got.ID, rt.ID)
	}

	_, err = store.FindTypeByName(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteType_InUse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	mustPerson(t, store, "per:bob", "Bob")
	friend := mustType(t, store, &types.RelationshipType{
		Name: "friend", Category: types.CategorySocial, IsSymmetric: true,
	})

	if err := store.CreateRelationship(ctx, &types.Relationship{
		PersonA: "per:alice", PersonB: "per:bob", TypeID: friend.ID,
	}); err != nil {
		t.Fatalf("CreateRelationship() failed: %v", err)
	}

	err := store.DeleteType(ctx, friend.ID)
	if !errors.Is(err, storage.ErrTypeInUse) {
		t.Fatalf("expected ErrTypeInUse, got %v", err)
	}

	// Removing the edge frees the type for deletion.
	result, err := store.ListRelationships(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListRelationships() failed: %v", err)
	}
	for _, r := range result.Items {
		if !r.AutoCreated {
			if err := store.DeleteRelationship(ctx, r.ID); err != nil {
				t.Fatalf("DeleteRelationship() failed: %v", err)
			}
		}
	}
	if err := store.DeleteType(ctx, friend.ID); err != nil {
		t.Fatalf("DeleteType() after unlinking failed: %v", err)
	}
}

func TestSeedTypes_UpsertPreservesIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []types.RelationshipType{
		{Name: "spouse", IsSymmetric: true, Category: types.CategoryFamily, AutoCreateInverse: true},
		{Name: "mother", InverseName: "child", Category: types.CategoryFamily, AutoCreateInverse: true},
	}
	if err := store.SeedTypes(ctx, seed); err != nil {
		t.Fatalf("SeedTypes() failed: %v", err)
	}

	before, err := store.FindTypeByName(ctx, "spouse")
	if err != nil {
		t.Fatalf("FindTypeByName() failed: %v", err)
	}

	// Re-seeding with a changed description keeps the same ID.
	seed[0].Description = "married partner"
	if err := store.SeedTypes(ctx, seed); err != nil {
		t.Fatalf("second SeedTypes() failed: %v", err)
	}

	after, err := store.FindTypeByName(ctx, "spouse")
	if err != nil {
		t.Fatalf("FindTypeByName() failed: %v", err)
	}
	if after.ID != before.ID {
		t.Errorf("seed upsert changed ID: %s -> %s", before.ID, after.ID)
	}
	if after.Description != "married partner" {
		t.Errorf("description = %q, want %q", after.Description, "married partner")
	}

	all, err := store.ListTypes(ctx)
	if err != nil {
		t.Fatalf("ListTypes() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 types after re-seed, got %d", len(all))
	}
}

func TestUpdateType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rt := mustType(t, store, &types.RelationshipType{
		Name: "colleague", Category: types.CategoryProfessional, IsSymmetric: true,
	})

	rt.AutoCreateInverse = true
	rt.Description = "works together"
	if err := store.UpdateType(ctx, rt); err != nil {
		t.Fatalf("UpdateType() failed: %v", err)
	}

	got, err := store.GetType(ctx, rt.ID)
	if err != nil {
		t.Fatalf("GetType() failed: %v", err)
	}
	if !got.AutoCreateInverse {
		t.Error("auto_create_inverse not persisted")
	}
	if got.Description != "works together" {
		t.Errorf("description = %q", got.Description)
	}
}
