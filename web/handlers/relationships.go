package handlers

import (
	"net/http"
	"time"

	"github.com/scrypster/lifegraph/pkg/types"
)

// CreateRelationshipRequest is the request body for POST /api/relationships.
// The edge reads "person_a is <type> to person_b".
type CreateRelationshipRequest struct {
	PersonA     string     `json:"person_a"`
	PersonB     string     `json:"person_b"`
	TypeID      string     `json:"type_id"`
	StartedDate *time.Time `json:"started_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Strength    int        `json:"strength,omitempty"`
}

// ListRelationships handles GET /api/relationships. person_id matches either
// end of an edge; exclude_auto_created=true hides engine-created mirrors.
func (h *API) ListRelationships(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	opts.ExcludeAutoCreated = r.URL.Query().Get("exclude_auto_created") == "true"

	result, err := h.store.ListRelationships(r.Context(), opts)
	if err != nil {
		respondStorageError(w, "failed to list relationships", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateRelationship handles POST /api/relationships. The inverse edge, when
// the type calls for one, is created in the same transaction; the response
// carries only the user-authored edge.
func (h *API) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rel := &types.Relationship{
		ID:          types.NewRelationshipID(),
		PersonA:     req.PersonA,
		PersonB:     req.PersonB,
		TypeID:      req.TypeID,
		StartedDate: req.StartedDate,
		Notes:       req.Notes,
		Strength:    req.Strength,
	}

	if err := h.store.CreateRelationship(r.Context(), rel); err != nil {
		respondStorageError(w, "failed to create relationship", err)
		return
	}

	h.broadcast(NewActivity("relationship_created", rel.ID))
	respondJSON(w, http.StatusCreated, rel)
}

// GetRelationship handles GET /api/relationships/{id}.
func (h *API) GetRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship ID is required", nil)
		return
	}

	rel, err := h.store.GetRelationship(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get relationship", err)
		return
	}
	respondJSON(w, http.StatusOK, rel)
}

// DeleteRelationship handles DELETE /api/relationships/{id}. The mirror edge,
// if one exists, is removed in the same transaction.
func (h *API) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship ID is required", nil)
		return
	}

	if err := h.store.DeleteRelationship(r.Context(), id); err != nil {
		respondStorageError(w, "failed to delete relationship", err)
		return
	}

	h.broadcast(NewActivity("relationship_deleted", id))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
