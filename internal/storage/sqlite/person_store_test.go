package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

func TestCreateAndGetPerson(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	birthday := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	p := &types.Person{
		ID:       "per:alice",
		Name:     "Alice Smith",
		Nickname: "Al",
		Email:    "alice@example.com",
		Location: "Lisbon",
		Birthday: &birthday,
		Tags:     []string{"college", "book-club"},
		IsActive: true,
	}
	if err := store.CreatePerson(ctx, p); err != nil {
		t.Fatalf("CreatePerson() failed: %v", err)
	}

	got, err := store.GetPerson(ctx, "per:alice")
	if err != nil {
		t.Fatalf("GetPerson() failed: %v", err)
	}
	if got.Name != "Alice Smith" || got.Nickname != "Al" || got.Email != "alice@example.com" {
		t.Errorf("person fields did not round-trip: %+v", got)
	}
	if got.Birthday == nil || !got.Birthday.Equal(birthday) {
		t.Errorf("birthday = %v, want %v", got.Birthday, birthday)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "college" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestGetPerson_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPerson(context.Background(), "per:ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePerson_RequiresName(t *testing.T) {
	store := newTestStore(t)

	err := store.CreatePerson(context.Background(), &types.Person{ID: "per:x"})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOwnerUniqueness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreatePerson(ctx, &types.Person{ID: "per:me", Name: "Me", IsOwner: true}); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if err := store.CreatePerson(ctx, &types.Person{ID: "per:other", Name: "Other", IsOwner: true}); err != nil {
		t.Fatalf("create second owner: %v", err)
	}

	// Creating a second owner demotes the first; only one remains.
	first, err := store.GetPerson(ctx, "per:me")
	if err != nil {
		t.Fatalf("GetPerson() failed: %v", err)
	}
	if first.IsOwner {
		t.Error("first person still flagged owner after reassignment")
	}
	second, err := store.GetPerson(ctx, "per:other")
	if err != nil {
		t.Fatalf("GetPerson() failed: %v", err)
	}
	if !second.IsOwner {
		t.Error("second person not flagged owner")
	}
}

func TestListPeople_SearchAndFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	people := []*types.Person{
		{ID: "per:1", Name: "Alice Smith", Nickname: "Al", IsActive: true, Tags: []string{"work"}},
		{ID: "per:2", Name: "Bob Jones", Email: "bob@alice.dev", IsActive: true},
		{ID: "per:3", Name: "Carol White", IsActive: false},
	}
	for _, p := range people {
		if err := store.CreatePerson(ctx, p); err != nil {
			t.Fatalf("CreatePerson(%s) failed: %v", p.ID, err)
		}
	}
	// Deactivation happens through the dedicated call, not the initial insert.
	if err := store.DeactivatePerson(ctx, "per:3"); err != nil {
		t.Fatalf("DeactivatePerson() failed: %v", err)
	}

	// Default listing excludes inactive people.
	result, err := store.ListPeople(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListPeople() failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("active total = %d, want 2", result.Total)
	}

	result, err = store.ListPeople(ctx, storage.ListOptions{IncludeInactive: true})
	if err != nil {
		t.Fatalf("ListPeople(IncludeInactive) failed: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("total = %d, want 3", result.Total)
	}

	// Search matches name, nickname, and email.
	result, err = store.ListPeople(ctx, storage.ListOptions{Query: "alice"})
	if err != nil {
		t.Fatalf("ListPeople(Query) failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("search total = %d, want 2 (name match + email match)", result.Total)
	}

	result, err = store.ListPeople(ctx, storage.ListOptions{Tag: "work"})
	if err != nil {
		t.Fatalf("ListPeople(Tag) failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "per:1" {
		t.Errorf("tag filter returned %+v", result.Items)
	}
}

func TestListPeople_Pagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"per:a", "per:b", "per:c"} {
		mustPerson(t, store, id, "Person "+id)
	}

	result, err := store.ListPeople(ctx, storage.ListOptions{Page: 1, Limit: 2, SortBy: "id", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("ListPeople() failed: %v", err)
	}
	if len(result.Items) != 2 || !result.HasMore {
		t.Errorf("page 1: items=%d hasMore=%v", len(result.Items), result.HasMore)
	}

	result, err = store.ListPeople(ctx, storage.ListOptions{Page: 2, Limit: 2, SortBy: "id", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("ListPeople() page 2 failed: %v", err)
	}
	if len(result.Items) != 1 || result.HasMore {
		t.Errorf("page 2: items=%d hasMore=%v", len(result.Items), result.HasMore)
	}
}

func TestUpdatePerson(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")

	p, err := store.GetPerson(ctx, "per:alice")
	if err != nil {
		t.Fatalf("GetPerson() failed: %v", err)
	}
	p.Location = "Porto"
	p.Notes = "moved south"
	if err := store.UpdatePerson(ctx, p); err != nil {
		t.Fatalf("UpdatePerson() failed: %v", err)
	}

	got, err := store.GetPerson(ctx, "per:alice")
	if err != nil {
		t.Fatalf("GetPerson() failed: %v", err)
	}
	if got.Location != "Porto" || got.Notes != "moved south" {
		t.Errorf("update did not persist: %+v", got)
	}
}

func TestDeletePerson_CascadesToMemoriesAndEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")

	mem := &types.Memory{ID: types.NewMemoryID(), PersonID: "per:alice", Content: "coffee chat"}
	if err := store.CreateMemory(ctx, mem); err != nil {
		t.Fatalf("CreateMemory() failed: %v", err)
	}
	evt := &types.LifeEvent{ID: types.NewLifeEventID(), PersonID: "per:alice", Kind: types.EventMove, Title: "Moved to Lisbon"}
	if err := store.CreateEvent(ctx, evt); err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}

	if err := store.DeletePerson(ctx, "per:alice"); err != nil {
		t.Fatalf("DeletePerson() failed: %v", err)
	}

	if _, err := store.GetMemory(ctx, mem.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("memory survived person delete: %v", err)
	}
	if _, err := store.GetEvent(ctx, evt.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("life event survived person delete: %v", err)
	}
}
