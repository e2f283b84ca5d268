package handlers

import (
	"net/http"
	"time"

	"github.com/scrypster/lifegraph/pkg/types"
)

// CreateEventRequest is the request body for POST /api/events.
type CreateEventRequest struct {
	PersonID    string     `json:"person_id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	HappenedOn  *time.Time `json:"happened_on,omitempty"`
	Description string     `json:"description,omitempty"`
}

// UpdateEventRequest is the request body for PATCH /api/events/{id}.
// Absent fields keep their current values.
type UpdateEventRequest struct {
	Kind        *string    `json:"kind,omitempty"`
	Title       *string    `json:"title,omitempty"`
	HappenedOn  *time.Time `json:"happened_on,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// CreateEvent handles POST /api/events.
func (h *API) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event := &types.LifeEvent{
		ID:          types.NewLifeEventID(),
		PersonID:    req.PersonID,
		Kind:        req.Kind,
		Title:       req.Title,
		HappenedOn:  req.HappenedOn,
		Description: req.Description,
	}

	if err := h.store.CreateEvent(r.Context(), event); err != nil {
		respondStorageError(w, "failed to create event", err)
		return
	}

	h.broadcast(NewActivity("event_created", event.ID))
	respondJSON(w, http.StatusCreated, event)
}

// GetEvent handles GET /api/events/{id}.
func (h *API) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "event ID is required", nil)
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get event", err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PATCH /api/events/{id}.
func (h *API) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "event ID is required", nil)
		return
	}

	var req UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.store.GetEvent(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get event", err)
		return
	}

	if req.Kind != nil {
		event.Kind = *req.Kind
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.HappenedOn != nil {
		event.HappenedOn = req.HappenedOn
	}
	if req.Description != nil {
		event.Description = *req.Description
	}

	if err := h.store.UpdateEvent(r.Context(), event); err != nil {
		respondStorageError(w, "failed to update event", err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id}.
func (h *API) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "event ID is required", nil)
		return
	}

	if err := h.store.DeleteEvent(r.Context(), id); err != nil {
		respondStorageError(w, "failed to delete event", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
