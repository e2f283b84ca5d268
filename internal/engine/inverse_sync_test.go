package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lifegraph/internal/storage"
	"github.com/scrypster/lifegraph/pkg/types"
)

// fakeTxStore is an in-memory TxStore for exercising the engine without a
// database. Edges are keyed by (a, b, typeID).
type fakeTxStore struct {
	typesByName map[string]*types.RelationshipType
	edges       map[[3]string]*types.Relationship
	inserted    []*types.Relationship
	deleted     [][3]string
}

func newFakeTxStore(catalog ...*types.RelationshipType) *fakeTxStore {
	f := &fakeTxStore{
		typesByName: make(map[string]*types.RelationshipType),
		edges:       make(map[[3]string]*types.Relationship),
	}
	for _, t := range catalog {
		f.typesByName[t.Name] = t
	}
	return f
}

func (f *fakeTxStore) FindTypeByName(_ context.Context, name string) (*types.RelationshipType, error) {
	t, ok := f.typesByName[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeTxStore) EdgeExists(_ context.Context, a, b, typeID string) (bool, error) {
	_, ok := f.edges[[3]string{a, b, typeID}]
	return ok, nil
}

func (f *fakeTxStore) InsertEdge(_ context.Context, rel *types.Relationship) error {
	key := [3]string{rel.PersonA, rel.PersonB, rel.TypeID}
	if _, ok := f.edges[key]; ok {
		return storage.ErrDuplicate
	}
	f.edges[key] = rel
	f.inserted = append(f.inserted, rel)
	return nil
}

func (f *fakeTxStore) DeleteEdge(_ context.Context, a, b, typeID string) error {
	key := [3]string{a, b, typeID}
	delete(f.edges, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func asymmetricPair() (*types.RelationshipType, *types.RelationshipType) {
	mother := &types.RelationshipType{
		ID: "rt:mother", Name: "mother", InverseName: "child",
		Category: types.CategoryFamily, AutoCreateInverse: true,
	}
	child := &types.RelationshipType{
		ID: "rt:child", Name: "child", InverseName: "mother",
		Category: types.CategoryFamily, AutoCreateInverse: true,
	}
	return mother, child
}

func symmetricFriend() *types.RelationshipType {
	return &types.RelationshipType{
		ID: "rt:friend", Name: "friend", InverseName: "friend",
		Category: types.CategorySocial, IsSymmetric: true, AutoCreateInverse: true,
	}
}

func TestResolveInverse_SymmetricIsItself(t *testing.T) {
	friend := symmetricFriend()
	tx := newFakeTxStore(friend)

	got, err := ResolveInverse(context.Background(), tx, friend)
	require.NoError(t, err)
	assert.Same(t, friend, got)
}

func TestResolveInverse_SymmetricFlagWinsOverInverseName(t *testing.T) {
	// A symmetric type carrying a different inverse_name still resolves to
	// itself; the flag takes precedence over the stored name.
	odd := &types.RelationshipType{
		ID: "rt:odd", Name: "pen-pal", InverseName: "stranger",
		IsSymmetric: true, AutoCreateInverse: true,
	}
	other := &types.RelationshipType{ID: "rt:stranger", Name: "stranger"}
	tx := newFakeTxStore(odd, other)

	got, err := ResolveInverse(context.Background(), tx, odd)
	require.NoError(t, err)
	assert.Same(t, odd, got)
}

func TestResolveInverse_AsymmetricLookup(t *testing.T) {
	mother, child := asymmetricPair()
	tx := newFakeTxStore(mother, child)

	got, err := ResolveInverse(context.Background(), tx, mother)
	require.NoError(t, err)
	assert.Equal(t, "rt:child", got.ID)
}

func TestResolveInverse_MissingInverseIsNotAnError(t *testing.T) {
	orphan := &types.RelationshipType{
		ID: "rt:fan", Name: "fan", InverseName: "idol", AutoCreateInverse: true,
	}
	tx := newFakeTxStore(orphan)

	got, err := ResolveInverse(context.Background(), tx, orphan)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveInverse_EmptyInverseName(t *testing.T) {
	bare := &types.RelationshipType{ID: "rt:bare", Name: "acquaintance"}
	tx := newFakeTxStore(bare)

	got, err := ResolveInverse(context.Background(), tx, bare)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAfterCreate_InsertsMirrorWithCopiedFields(t *testing.T) {
	mother, child := asymmetricPair()
	tx := newFakeTxStore(mother, child)

	started := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
	created := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob",
		TypeID: mother.ID, TypeName: mother.Name,
		StartedDate: &started, Notes: "adopted", Strength: 5,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, created, mother))

	require.Len(t, tx.inserted, 1)
	mirror := tx.inserted[0]
	assert.Equal(t, "per:bob", mirror.PersonA)
	assert.Equal(t, "per:alice", mirror.PersonB)
	assert.Equal(t, "rt:child", mirror.TypeID)
	assert.True(t, mirror.AutoCreated)
	assert.Equal(t, &started, mirror.StartedDate)
	assert.Equal(t, "adopted", mirror.Notes)
	assert.Equal(t, 5, mirror.Strength)
	assert.NotEqual(t, created.ID, mirror.ID)
}

func TestAfterCreate_AutoCreatedEdgeNeverRecurses(t *testing.T) {
	mother, child := asymmetricPair()
	tx := newFakeTxStore(mother, child)

	mirror := &types.Relationship{
		ID: "rel:m", PersonA: "per:bob", PersonB: "per:alice",
		TypeID: child.ID, AutoCreated: true,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, mirror, child))
	assert.Empty(t, tx.inserted)
}

func TestAfterCreate_AutoCreateInverseDisabled(t *testing.T) {
	mother, child := asymmetricPair()
	mother.AutoCreateInverse = false
	tx := newFakeTxStore(mother, child)

	created := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob", TypeID: mother.ID,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, created, mother))
	assert.Empty(t, tx.inserted)
}

func TestAfterCreate_MissingInverseIsSilentNoOp(t *testing.T) {
	orphan := &types.RelationshipType{
		ID: "rt:fan", Name: "fan", InverseName: "idol", AutoCreateInverse: true,
	}
	tx := newFakeTxStore(orphan)

	created := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob", TypeID: orphan.ID,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, created, orphan))
	assert.Empty(t, tx.inserted)
}

func TestAfterCreate_IdempotentWhenReverseExists(t *testing.T) {
	// Two types declare each other as inverses and the user manually creates
	// both directions; the second create must not synthesize a duplicate.
	mother, child := asymmetricPair()
	tx := newFakeTxStore(mother, child)
	tx.edges[[3]string{"per:bob", "per:alice", child.ID}] = &types.Relationship{ID: "rel:manual"}

	created := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob", TypeID: mother.ID,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, created, mother))
	assert.Empty(t, tx.inserted)
}

func TestAfterCreate_SymmetricMirror(t *testing.T) {
	friend := symmetricFriend()
	tx := newFakeTxStore(friend)

	created := &types.Relationship{
		ID: "rel:1", PersonA: "per:carol", PersonB: "per:dave", TypeID: friend.ID,
	}

	require.NoError(t, AfterCreate(context.Background(), tx, created, friend))

	require.Len(t, tx.inserted, 1)
	mirror := tx.inserted[0]
	assert.Equal(t, "per:dave", mirror.PersonA)
	assert.Equal(t, "per:carol", mirror.PersonB)
	assert.Equal(t, friend.ID, mirror.TypeID)
	assert.True(t, mirror.AutoCreated)
}

func TestBeforeDelete_RemovesMirror(t *testing.T) {
	mother, child := asymmetricPair()
	tx := newFakeTxStore(mother, child)
	tx.edges[[3]string{"per:bob", "per:alice", child.ID}] = &types.Relationship{ID: "rel:m", AutoCreated: true}

	doomed := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob", TypeID: mother.ID,
	}

	require.NoError(t, BeforeDelete(context.Background(), tx, doomed, mother))

	require.Len(t, tx.deleted, 1)
	assert.Equal(t, [3]string{"per:bob", "per:alice", "rt:child"}, tx.deleted[0])
	assert.Empty(t, tx.edges)
}

func TestBeforeDelete_MissingInverseIsNoOp(t *testing.T) {
	orphan := &types.RelationshipType{
		ID: "rt:fan", Name: "fan", InverseName: "idol", AutoCreateInverse: true,
	}
	tx := newFakeTxStore(orphan)

	doomed := &types.Relationship{
		ID: "rel:1", PersonA: "per:alice", PersonB: "per:bob", TypeID: orphan.ID,
	}

	require.NoError(t, BeforeDelete(context.Background(), tx, doomed, orphan))
	assert.Empty(t, tx.deleted)
}

func TestBeforeDelete_AbsentMirrorIsHarmless(t *testing.T) {
	friend := symmetricFriend()
	tx := newFakeTxStore(friend)

	doomed := &types.Relationship{
		ID: "rel:1", PersonA: "per:carol", PersonB: "per:dave", TypeID: friend.ID,
	}

	// No reverse row exists; DeleteEdge on an absent edge must not error.
	require.NoError(t, BeforeDelete(context.Background(), tx, doomed, friend))
}
