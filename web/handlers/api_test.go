package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/services"
	"github.com/scrypster/lifegraph/internal/storage/sqlite"
	"github.com/scrypster/lifegraph/pkg/types"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := config.Load()
	require.NoError(t, err)

	return NewAPI(store, cfg).WithSettings(services.NewSettingsService(store.GetDB()))
}

// do runs a handler against a request with optional JSON body and path values.
func do(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	for key, value := range pathValues {
		req.SetPathValue(key, value)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createPerson(t *testing.T, api *API, name string) *types.Person {
	t.Helper()
	rec := do(t, api.CreatePerson, http.MethodPost, "/api/people",
		CreatePersonRequest{Name: name}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeBody[types.Person](t, rec)
	return &p
}

func createType(t *testing.T, api *API, req CreateRelationshipTypeRequest) *types.RelationshipType {
	t.Helper()
	rec := do(t, api.CreateRelationshipType, http.MethodPost, "/api/relationship-types", req, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rt := decodeBody[types.RelationshipType](t, rec)
	return &rt
}

func TestPeople_CreateAndGet(t *testing.T) {
	api := newTestAPI(t)

	created := createPerson(t, api, "Alice")
	assert.True(t, created.IsActive)

	rec := do(t, api.GetPerson, http.MethodGet, "/api/people/"+created.ID, nil,
		map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[types.Person](t, rec)
	assert.Equal(t, "Alice", got.Name)
}

func TestPeople_CreateRequiresName(t *testing.T) {
	api := newTestAPI(t)

	rec := do(t, api.CreatePerson, http.MethodPost, "/api/people",
		CreatePersonRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPeople_GetUnknownIs404(t *testing.T) {
	api := newTestAPI(t)

	rec := do(t, api.GetPerson, http.MethodGet, "/api/people/per:missing", nil,
		map[string]string{"id": "per:missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPeople_PatchKeepsAbsentFields(t *testing.T) {
	api := newTestAPI(t)
	created := createPerson(t, api, "Alice")

	nickname := "Al"
	rec := do(t, api.UpdatePerson, http.MethodPatch, "/api/people/"+created.ID,
		UpdatePersonRequest{Nickname: &nickname},
		map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody[types.Person](t, rec)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Al", got.Nickname)
}

func TestPeople_UnknownFieldIs400(t *testing.T) {
	api := newTestAPI(t)

	rec := do(t, api.CreatePerson, http.MethodPost, "/api/people",
		map[string]string{"name": "Alice", "nmae": "typo"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationships_CreateMirrorsAndDeletes(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	bob := createPerson(t, api, "Bob")

	mother := createType(t, api, CreateRelationshipTypeRequest{
		Name: "mother", InverseName: "child", Category: types.CategoryFamily,
		AutoCreateInverse: true,
	})
	createType(t, api, CreateRelationshipTypeRequest{
		Name: "child", InverseName: "mother", Category: types.CategoryFamily,
		AutoCreateInverse: true,
	})

	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: alice.ID, PersonB: bob.ID, TypeID: mother.ID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[types.Relationship](t, rec)
	assert.False(t, created.AutoCreated)

	// Both the edge and its mirror are visible.
	listRec := do(t, api.ListRelationships, http.MethodGet, "/api/relationships", nil, nil)
	require.Equal(t, http.StatusOK, listRec.Code)
	list := decodeBody[struct {
		Items []types.Relationship `json:"Items"`
	}](t, listRec)
	assert.Len(t, list.Items, 2)

	// Deleting the user-authored edge removes the mirror too.
	delRec := do(t, api.DeleteRelationship, http.MethodDelete, "/api/relationships/"+created.ID,
		nil, map[string]string{"id": created.ID})
	require.Equal(t, http.StatusOK, delRec.Code)

	listRec = do(t, api.ListRelationships, http.MethodGet, "/api/relationships", nil, nil)
	list = decodeBody[struct {
		Items []types.Relationship `json:"Items"`
	}](t, listRec)
	assert.Empty(t, list.Items)
}

func TestRelationships_SelfRelationshipIs400(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	friend := createType(t, api, CreateRelationshipTypeRequest{Name: "friend", IsSymmetric: true})

	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: alice.ID, PersonB: alice.ID, TypeID: friend.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationships_DuplicateIs409(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	bob := createPerson(t, api, "Bob")
	friend := createType(t, api, CreateRelationshipTypeRequest{Name: "friend", IsSymmetric: true})

	req := CreateRelationshipRequest{PersonA: alice.ID, PersonB: bob.ID, TypeID: friend.ID}
	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships", req, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, api.CreateRelationship, http.MethodPost, "/api/relationships", req, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRelationships_UnknownPersonIs400(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	friend := createType(t, api, CreateRelationshipTypeRequest{Name: "friend", IsSymmetric: true})

	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: alice.ID, PersonB: "per:ghost", TypeID: friend.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationshipTypes_DeleteInUseIs409(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	bob := createPerson(t, api, "Bob")
	mentor := createType(t, api, CreateRelationshipTypeRequest{Name: "mentor"})

	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: alice.ID, PersonB: bob.ID, TypeID: mentor.ID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, api.DeleteRelationshipType, http.MethodDelete, "/api/relationship-types/"+mentor.ID,
		nil, map[string]string{"id": mentor.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRelationshipTypes_SymmetricNormalization(t *testing.T) {
	api := newTestAPI(t)

	friend := createType(t, api, CreateRelationshipTypeRequest{Name: "friend", IsSymmetric: true})
	assert.Equal(t, "friend", friend.InverseName)
	assert.Equal(t, types.CategoryCustom, friend.Category)
}

func TestGraph_CollapsesMirrorsAndSymmetricPairs(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")
	bob := createPerson(t, api, "Bob")
	carol := createPerson(t, api, "Carol")

	mother := createType(t, api, CreateRelationshipTypeRequest{
		Name: "mother", InverseName: "child", AutoCreateInverse: true,
	})
	createType(t, api, CreateRelationshipTypeRequest{
		Name: "child", InverseName: "mother", AutoCreateInverse: true,
	})
	friend := createType(t, api, CreateRelationshipTypeRequest{Name: "friend", IsSymmetric: true})

	// Asymmetric edge plus auto-created mirror.
	rec := do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: alice.ID, PersonB: bob.ID, TypeID: mother.ID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Symmetric edge authored in both directions (auto-create disabled).
	rec = do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: bob.ID, PersonB: carol.ID, TypeID: friend.ID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, api.CreateRelationship, http.MethodPost, "/api/relationships",
		CreateRelationshipRequest{PersonA: carol.ID, PersonB: bob.ID, TypeID: friend.ID}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	graphRec := do(t, api.Graph, http.MethodGet, "/api/graph", nil, nil)
	require.Equal(t, http.StatusOK, graphRec.Code)
	graph := decodeBody[GraphResponse](t, graphRec)

	assert.Len(t, graph.Nodes, 3)
	require.Len(t, graph.Edges, 2)

	byType := map[string]GraphEdge{}
	for _, e := range graph.Edges {
		byType[e.TypeName] = e
	}
	assert.Equal(t, alice.ID, byType["mother"].Source)
	assert.Equal(t, bob.ID, byType["mother"].Target)
	assert.Contains(t, []string{bob.ID, carol.ID}, byType["friend"].Source)
}

func TestMemories_CreateStartsPendingWithoutWorker(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")

	rec := do(t, api.CreateMemory, http.MethodPost, "/api/memories",
		CreateMemoryRequest{PersonID: alice.ID, Content: "coffee in the rain"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	memory := decodeBody[types.Memory](t, rec)
	assert.Equal(t, types.TaggingPending, memory.TaggingStatus)
}

func TestMemories_SimilarWithoutEmbeddingIsEmpty(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")

	rec := do(t, api.CreateMemory, http.MethodPost, "/api/memories",
		CreateMemoryRequest{PersonID: alice.ID, Content: "hiking"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	memory := decodeBody[types.Memory](t, rec)

	simRec := do(t, api.SimilarMemories, http.MethodGet, "/api/memories/"+memory.ID+"/similar",
		nil, map[string]string{"id": memory.ID})
	require.Equal(t, http.StatusOK, simRec.Code)

	resp := decodeBody[struct {
		Results []SimilarMemoryResult `json:"results"`
	}](t, simRec)
	assert.Empty(t, resp.Results)
}

func TestEvents_RejectsUnknownKind(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")

	rec := do(t, api.CreateEvent, http.MethodPost, "/api/events",
		CreateEventRequest{PersonID: alice.ID, Kind: "levitation", Title: "??"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_ListByPerson(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")

	rec := do(t, api.CreateEvent, http.MethodPost, "/api/events",
		CreateEventRequest{PersonID: alice.ID, Kind: types.EventMove, Title: "Moved to Berlin"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	listRec := do(t, api.ListPersonEvents, http.MethodGet, "/api/people/"+alice.ID+"/events",
		nil, map[string]string{"id": alice.ID})
	require.Equal(t, http.StatusOK, listRec.Code)

	resp := decodeBody[struct {
		Events []types.LifeEvent `json:"events"`
	}](t, listRec)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Moved to Berlin", resp.Events[0].Title)
}

func TestParseContact_NoProviderIs503(t *testing.T) {
	api := newTestAPI(t)

	rec := do(t, api.ParseContact, http.MethodPost, "/api/parse-contact",
		ParseContactRequest{Text: "met Sam at the gym"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUserConfig_RoundTrip(t *testing.T) {
	api := newTestAPI(t)

	rec := do(t, api.PostUserConfig, http.MethodPost, "/api/config/user",
		map[string]string{"owner_name": "Riley"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	getRec := do(t, api.GetUserConfig, http.MethodGet, "/api/config/user", nil, nil)
	require.Equal(t, http.StatusOK, getRec.Code)
	resp := decodeBody[map[string]string](t, getRec)
	assert.Equal(t, "Riley", resp["owner_name"])
}

func TestStats_CountsDataset(t *testing.T) {
	api := newTestAPI(t)
	alice := createPerson(t, api, "Alice")

	rec := do(t, api.CreateMemory, http.MethodPost, "/api/memories",
		CreateMemoryRequest{PersonID: alice.ID, Content: "notes"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	statsRec := do(t, api.GetStats, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, statsRec.Code)

	stats := decodeBody[StatsResponse](t, statsRec)
	assert.Equal(t, 1, stats.People)
	assert.Equal(t, 1, stats.Memories)
	assert.Equal(t, 1, stats.PendingTagging)
}

func TestImportCSV_CreatesPeople(t *testing.T) {
	api := newTestAPI(t)

	body := bytes.NewBufferString("name,email\nAlice,alice@example.com\nBob,bob@example.com\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", body)
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	api.ImportCSV(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[struct {
		Created int `json:"created"`
	}](t, rec)
	assert.Equal(t, 2, resp.Created)

	listRec := do(t, api.ListPeople, http.MethodGet, "/api/people", nil, nil)
	list := decodeBody[struct {
		Total int `json:"Total"`
	}](t, listRec)
	assert.Equal(t, 2, list.Total)
}
