package handlers

import (
	"net/http"

	"github.com/scrypster/lifegraph/pkg/types"
)

// CreateRelationshipTypeRequest is the request body for POST /api/relationship-types.
type CreateRelationshipTypeRequest struct {
	Name              string `json:"name"`
	InverseName       string `json:"inverse_name,omitempty"`
	Category          string `json:"category,omitempty"`
	Description       string `json:"description,omitempty"`
	IsSymmetric       bool   `json:"is_symmetric,omitempty"`
	AutoCreateInverse bool   `json:"auto_create_inverse,omitempty"`
}

// UpdateRelationshipTypeRequest is the request body for PATCH
// /api/relationship-types/{id}. Absent fields keep their current values.
type UpdateRelationshipTypeRequest struct {
	Name              *string `json:"name,omitempty"`
	InverseName       *string `json:"inverse_name,omitempty"`
	Category          *string `json:"category,omitempty"`
	Description       *string `json:"description,omitempty"`
	IsSymmetric       *bool   `json:"is_symmetric,omitempty"`
	AutoCreateInverse *bool   `json:"auto_create_inverse,omitempty"`
}

// ListRelationshipTypes handles GET /api/relationship-types.
func (h *API) ListRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.ListTypes(r.Context())
	if err != nil {
		respondStorageError(w, "failed to list relationship types", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"types": catalog})
}

// CreateRelationshipType handles POST /api/relationship-types.
func (h *API) CreateRelationshipType(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t := &types.RelationshipType{
		ID:                types.NewRelationshipTypeID(),
		Name:              req.Name,
		InverseName:       req.InverseName,
		Category:          req.Category,
		Description:       req.Description,
		IsSymmetric:       req.IsSymmetric,
		AutoCreateInverse: req.AutoCreateInverse,
	}

	if err := h.store.CreateType(r.Context(), t); err != nil {
		respondStorageError(w, "failed to create relationship type", err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// GetRelationshipType handles GET /api/relationship-types/{id}.
func (h *API) GetRelationshipType(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship type ID is required", nil)
		return
	}

	t, err := h.store.GetType(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get relationship type", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// UpdateRelationshipType handles PATCH /api/relationship-types/{id}.
// Toggling auto_create_inverse off does not remove mirrors already created.
func (h *API) UpdateRelationshipType(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship type ID is required", nil)
		return
	}

	var req UpdateRelationshipTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	t, err := h.store.GetType(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get relationship type", err)
		return
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.InverseName != nil {
		t.InverseName = *req.InverseName
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.IsSymmetric != nil {
		t.IsSymmetric = *req.IsSymmetric
	}
	if req.AutoCreateInverse != nil {
		t.AutoCreateInverse = *req.AutoCreateInverse
	}

	if err := h.store.UpdateType(r.Context(), t); err != nil {
		respondStorageError(w, "failed to update relationship type", err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeleteRelationshipType handles DELETE /api/relationship-types/{id}.
// Deleting a type still referenced by relationships answers 409; the catalog
// never cascades into user edges.
func (h *API) DeleteRelationshipType(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship type ID is required", nil)
		return
	}

	if err := h.store.DeleteType(r.Context(), id); err != nil {
		respondStorageError(w, "failed to delete relationship type", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
