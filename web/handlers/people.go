package handlers

import (
	"net/http"
	"time"

	"github.com/scrypster/lifegraph/pkg/types"
)

// CreatePersonRequest is the request body for POST /api/people.
type CreatePersonRequest struct {
	Name     string     `json:"name"`
	Nickname string     `json:"nickname,omitempty"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	Location string     `json:"location,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Notes    string     `json:"notes,omitempty"`
	IsOwner  bool       `json:"is_owner,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
}

// UpdatePersonRequest is the request body for PATCH /api/people/{id}.
// Absent fields keep their current values.
type UpdatePersonRequest struct {
	Name     *string    `json:"name,omitempty"`
	Nickname *string    `json:"nickname,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Phone    *string    `json:"phone,omitempty"`
	Location *string    `json:"location,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
	IsOwner  *bool      `json:"is_owner,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
}

// ListPeople handles GET /api/people.
func (h *API) ListPeople(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	opts.IncludeInactive = r.URL.Query().Get("include_inactive") == "true"

	result, err := h.store.ListPeople(r.Context(), opts)
	if err != nil {
		respondStorageError(w, "failed to list people", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreatePerson handles POST /api/people.
func (h *API) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	person := &types.Person{
		ID:       types.NewPersonID(),
		Name:     req.Name,
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		Location: req.Location,
		Birthday: req.Birthday,
		Notes:    req.Notes,
		IsOwner:  req.IsOwner,
		Tags:     req.Tags,
	}

	if err := h.store.CreatePerson(r.Context(), person); err != nil {
		respondStorageError(w, "failed to create person", err)
		return
	}

	h.broadcast(NewActivity("person_created", person.ID))
	respondJSON(w, http.StatusCreated, person)
}

// GetPerson handles GET /api/people/{id}.
func (h *API) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get person", err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

// UpdatePerson handles PATCH /api/people/{id}.
func (h *API) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	var req UpdatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get person", err)
		return
	}

	applyPersonPatch(person, &req)

	if err := h.store.UpdatePerson(r.Context(), person); err != nil {
		respondStorageError(w, "failed to update person", err)
		return
	}

	h.broadcast(NewActivity("person_updated", person.ID))
	respondJSON(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/people/{id}. With ?soft=true the person
// is deactivated instead of removed; a hard delete cascades to their
// relationships, memories, and life events.
func (h *API) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	var err error
	if r.URL.Query().Get("soft") == "true" {
		err = h.store.DeactivatePerson(r.Context(), id)
	} else {
		err = h.store.DeletePerson(r.Context(), id)
	}
	if err != nil {
		respondStorageError(w, "failed to delete person", err)
		return
	}

	h.broadcast(NewActivity("person_deleted", id))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// ListPersonEvents handles GET /api/people/{id}/events.
func (h *API) ListPersonEvents(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	// 404 for unknown people rather than an empty list.
	if _, err := h.store.GetPerson(r.Context(), id); err != nil {
		respondStorageError(w, "failed to get person", err)
		return
	}

	events, err := h.store.ListEventsByPerson(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to list events", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func applyPersonPatch(person *types.Person, req *UpdatePersonRequest) {
	if req.Name != nil {
		person.Name = *req.Name
	}
	if req.Nickname != nil {
		person.Nickname = *req.Nickname
	}
	if req.Email != nil {
		person.Email = *req.Email
	}
	if req.Phone != nil {
		person.Phone = *req.Phone
	}
	if req.Location != nil {
		person.Location = *req.Location
	}
	if req.Birthday != nil {
		person.Birthday = req.Birthday
	}
	if req.Notes != nil {
		person.Notes = *req.Notes
	}
	if req.IsActive != nil {
		person.IsActive = *req.IsActive
	}
	if req.IsOwner != nil {
		person.IsOwner = *req.IsOwner
	}
	if req.Tags != nil {
		person.Tags = req.Tags
	}
}
