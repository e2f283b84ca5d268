package handlers

import (
	"net/http"
	"time"

	"github.com/scrypster/lifegraph/pkg/types"
)

// CreateMemoryRequest is the request body for POST /api/memories.
type CreateMemoryRequest struct {
	PersonID   string     `json:"person_id"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content"`
	HappenedOn *time.Time `json:"happened_on,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// UpdateMemoryRequest is the request body for PATCH /api/memories/{id}.
// Absent fields keep their current values.
type UpdateMemoryRequest struct {
	Title      *string    `json:"title,omitempty"`
	Content    *string    `json:"content,omitempty"`
	HappenedOn *time.Time `json:"happened_on,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// SimilarMemoryResult pairs a memory with its similarity score.
type SimilarMemoryResult struct {
	Memory *types.Memory `json:"memory"`
	Score  float64       `json:"score"`
}

// ListMemories handles GET /api/memories.
func (h *API) ListMemories(w http.ResponseWriter, r *http.Request) {
	result, err := h.store.ListMemories(r.Context(), parseListOptions(r))
	if err != nil {
		respondStorageError(w, "failed to list memories", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateMemory handles POST /api/memories. The memory is stored immediately
// with tagging_status=pending; tag suggestion and embedding generation run
// on the background workers, so an unreachable model never blocks a write.
func (h *API) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	memory := &types.Memory{
		ID:         types.NewMemoryID(),
		PersonID:   req.PersonID,
		Title:      req.Title,
		Content:    req.Content,
		HappenedOn: req.HappenedOn,
		Tags:       req.Tags,
	}

	if err := h.store.CreateMemory(r.Context(), memory); err != nil {
		respondStorageError(w, "failed to create memory", err)
		return
	}

	if h.worker != nil {
		h.worker.Enqueue(memory.ID, memory.Content)
	}

	h.broadcast(NewActivity("memory_created", memory.ID))
	respondJSON(w, http.StatusCreated, memory)
}

// GetMemory handles GET /api/memories/{id}.
func (h *API) GetMemory(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "memory ID is required", nil)
		return
	}

	memory, err := h.store.GetMemory(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get memory", err)
		return
	}
	respondJSON(w, http.StatusOK, memory)
}

// UpdateMemory handles PATCH /api/memories/{id}. A content change re-queues
// the memory for tag suggestion.
func (h *API) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "memory ID is required", nil)
		return
	}

	var req UpdateMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	memory, err := h.store.GetMemory(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to get memory", err)
		return
	}

	contentChanged := false
	if req.Title != nil {
		memory.Title = *req.Title
	}
	if req.Content != nil && *req.Content != memory.Content {
		memory.Content = *req.Content
		contentChanged = true
	}
	if req.HappenedOn != nil {
		memory.HappenedOn = req.HappenedOn
	}
	if req.Tags != nil {
		memory.Tags = req.Tags
	}

	if err := h.store.UpdateMemory(r.Context(), memory); err != nil {
		respondStorageError(w, "failed to update memory", err)
		return
	}

	if contentChanged && h.worker != nil {
		h.worker.Enqueue(memory.ID, memory.Content)
	}

	h.broadcast(NewActivity("memory_updated", memory.ID))
	respondJSON(w, http.StatusOK, memory)
}

// DeleteMemory handles DELETE /api/memories/{id}.
func (h *API) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "memory ID is required", nil)
		return
	}

	if err := h.store.DeleteMemory(r.Context(), id); err != nil {
		respondStorageError(w, "failed to delete memory", err)
		return
	}

	h.broadcast(NewActivity("memory_deleted", id))
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// SimilarMemories handles GET /api/memories/{id}/similar. Answers an empty
// list when the memory has no embedding yet (tagging may still be pending).
func (h *API) SimilarMemories(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "memory ID is required", nil)
		return
	}

	if _, err := h.store.GetMemory(r.Context(), id); err != nil {
		respondStorageError(w, "failed to get memory", err)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 5)
	if limit < 1 || limit > 50 {
		limit = 5
	}

	neighbors, err := h.store.SimilarMemories(r.Context(), id, limit)
	if err != nil {
		respondStorageError(w, "failed to find similar memories", err)
		return
	}

	results := make([]SimilarMemoryResult, 0, len(neighbors))
	for _, n := range neighbors {
		memory, err := h.store.GetMemory(r.Context(), n.MemoryID)
		if err != nil {
			// Neighbor deleted between the similarity query and the fetch.
			continue
		}
		results = append(results, SimilarMemoryResult{Memory: memory, Score: n.Score})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
