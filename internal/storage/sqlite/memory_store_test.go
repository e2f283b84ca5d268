package sqlite

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func mustMemory(t *testing.T, store *Store, personID, content string) *types.Memory {
	t.Helper()
	m := &types.Memory{ID: types.NewMemoryID(), PersonID: personID, Content: content}
	if err := store.CreateMemory(context.Background(), m); err != nil {
		t.Fatalf("mustMemory failed: %v", err)
	}
	return m
}

func TestCreateMemory_DefaultsToPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	m := mustMemory(t, store, "per:alice", "talked about her new job")

	got, err := store.GetMemory(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMemory() failed: %v", err)
	}
	if got.TaggingStatus != types.TaggingPending {
		t.Errorf("tagging status = %q, want %q", got.TaggingStatus, types.TaggingPending)
	}
}

func TestUpdateTagging_MergesTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	m := &types.Memory{
		ID: types.NewMemoryID(), PersonID: "per:alice",
		Content: "dinner at the harbor", Tags: []string{"food"},
	}
	if err := store.CreateMemory(ctx, m); err != nil {
		t.Fatalf("CreateMemory() failed: %v", err)
	}

	err := store.UpdateTagging(ctx, m.ID, types.TaggingCompleted, []string{"travel", "food"}, "")
	if err != nil {
		t.Fatalf("UpdateTagging() failed: %v", err)
	}

	got, err := store.GetMemory(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMemory() failed: %v", err)
	}
	if got.TaggingStatus != types.TaggingCompleted {
		t.Errorf("status = %q, want completed", got.TaggingStatus)
	}
	// User-authored tag stays first; suggestions are unioned without dupes.
	want := []string{"food", "travel"}
	if !reflect.DeepEqual(got.Tags, want) {
		t.Errorf("tags = %v, want %v", got.Tags, want)
	}
}

func TestUpdateTagging_RecordsFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	m := mustMemory(t, store, "per:alice", "quick call")

	err := store.UpdateTagging(ctx, m.ID, types.TaggingFailed, nil, "model unavailable")
	if err != nil {
		t.Fatalf("UpdateTagging() failed: %v", err)
	}

	got, err := store.GetMemory(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMemory() failed: %v", err)
	}
	if got.TaggingStatus != types.TaggingFailed || got.TaggingError != "model unavailable" {
		t.Errorf("failure not recorded: status=%q err=%q", got.TaggingStatus, got.TaggingError)
	}
}

func TestListMemories_FilterByPersonAndTag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	mustPerson(t, store, "per:bob", "Bob")

	m1 := &types.Memory{ID: types.NewMemoryID(), PersonID: "per:alice", Content: "hiking trip", Tags: []string{"outdoors"}}
	m2 := &types.Memory{ID: types.NewMemoryID(), PersonID: "per:alice", Content: "movie night"}
	m3 := &types.Memory{ID: types.NewMemoryID(), PersonID: "per:bob", Content: "board games"}
	for _, m := range []*types.Memory{m1, m2, m3} {
		if err := store.CreateMemory(ctx, m); err != nil {
			t.Fatalf("CreateMemory() failed: %v", err)
		}
	}

	result, err := store.ListMemories(ctx, storage.ListOptions{PersonID: "per:alice"})
	if err != nil {
		t.Fatalf("ListMemories() failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("person filter total = %d, want 2", result.Total)
	}

	result, err = store.ListMemories(ctx, storage.ListOptions{Tag: "outdoors"})
	if err != nil {
		t.Fatalf("ListMemories(Tag) failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != m1.ID {
		t.Errorf("tag filter returned %+v", result.Items)
	}

	result, err = store.ListMemories(ctx, storage.ListOptions{Query: "movie"})
	if err != nil {
		t.Fatalf("ListMemories(Query) failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != m2.ID {
		t.Errorf("query filter returned %+v", result.Items)
	}
}

func TestEmbeddings_SimilarMemories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	m1 := mustMemory(t, store, "per:alice", "sailing on the bay")
	m2 := mustMemory(t, store, "per:alice", "boat trip at sunset")
	m3 := mustMemory(t, store, "per:alice", "tax paperwork")

	embed := func(id string, vec []float32) {
		if err := store.StoreEmbedding(ctx, id, vec, "test-model"); err != nil {
			t.Fatalf("StoreEmbedding(%s) failed: %v", id, err)
		}
	}
	embed(m1.ID, []float32{1, 0, 0})
	embed(m2.ID, []float32{0.9, 0.1, 0})
	embed(m3.ID, []float32{0, 0, 1})

	similar, err := store.SimilarMemories(ctx, m1.ID, 2)
	if err != nil {
		t.Fatalf("SimilarMemories() failed: %v", err)
	}
	if len(similar) != 2 {
		t.Fatalf("got %d results, want 2", len(similar))
	}
	if similar[0].MemoryID != m2.ID {
		t.Errorf("closest memory = %s, want %s", similar[0].MemoryID, m2.ID)
	}
	if similar[0].Score <= similar[1].Score {
		t.Errorf("results not sorted by score: %v", similar)
	}
}

func TestEmbeddings_MissingStartMemory(t *testing.T) {
	store := newTestStore(t)

	similar, err := store.SimilarMemories(context.Background(), "mem:ghost", 5)
	if err != nil {
		t.Fatalf("SimilarMemories() failed: %v", err)
	}
	if similar == nil || len(similar) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", similar)
	}
}

func TestEmbeddings_CascadeWithMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")
	m := mustMemory(t, store, "per:alice", "picnic")
	if err := store.StoreEmbedding(ctx, m.ID, []float32{0.5, 0.5}, "test-model"); err != nil {
		t.Fatalf("StoreEmbedding() failed: %v", err)
	}

	if err := store.DeleteMemory(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMemory() failed: %v", err)
	}

	var n int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM embeddings").Scan(&n); err != nil {
		t.Fatalf("count embeddings: %v", err)
	}
	if n != 0 {
		t.Errorf("embedding survived memory delete")
	}
}

func TestDeleteMemory_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteMemory(context.Background(), "mem:ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLifeEvents_OrderedByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustPerson(t, store, "per:alice", "Alice")

	wedding := &types.LifeEvent{ID: types.NewLifeEventID(), PersonID: "per:alice", Kind: types.EventWedding, Title: "Wedding"}
	undated := &types.LifeEvent{ID: types.NewLifeEventID(), PersonID: "per:alice", Kind: types.EventCustom, Title: "Sometime"}
	move := &types.LifeEvent{ID: types.NewLifeEventID(), PersonID: "per:alice", Kind: types.EventMove, Title: "Moved"}

	wd := date(2020, 6, 1)
	mv := date(2018, 3, 15)
	wedding.HappenedOn = &wd
	move.HappenedOn = &mv

	for _, e := range []*types.LifeEvent{wedding, undated, move} {
		if err := store.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent(%s) failed: %v", e.Title, err)
		}
	}

	events, err := store.ListEventsByPerson(ctx, "per:alice")
	if err != nil {
		t.Fatalf("ListEventsByPerson() failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	// Oldest dated first, undated last.
	if events[0].ID != move.ID || events[1].ID != wedding.ID || events[2].ID != undated.ID {
		t.Errorf("order = %s, %s, %s", events[0].Title, events[1].Title, events[2].Title)
	}
}

func TestCreateEvent_RejectsUnknownKind(t *testing.T) {
	store := newTestStore(t)

	mustPerson(t, store, "per:alice", "Alice")
	err := store.CreateEvent(context.Background(), &types.LifeEvent{
		ID: types.NewLifeEventID(), PersonID: "per:alice", Kind: "lottery_win", Title: "Jackpot",
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
