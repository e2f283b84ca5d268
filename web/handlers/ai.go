package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/scrypster/lifegraph/internal/llm"
	"github.com/scrypster/lifegraph/internal/storage"
)

// ParseContactRequest is the request body for POST /api/parse-contact.
type ParseContactRequest struct {
	Text string `json:"text"`
}

// ParseContact handles POST /api/parse-contact: free text in, structured
// person fields out. Nothing is persisted; the client reviews the fields
// before creating the person.
func (h *API) ParseContact(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		respondError(w, http.StatusServiceUnavailable, "no LLM provider configured", nil)
		return
	}

	var req ParseContactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required", nil)
		return
	}

	raw, err := h.generator.Complete(r.Context(), llm.ContactParsePrompt(req.Text))
	if err != nil {
		respondLLMError(w, "contact parsing failed", err)
		return
	}

	contact, err := llm.ParseContactResponse(raw)
	if err != nil {
		respondError(w, http.StatusBadGateway, "model returned an unusable response", err)
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

// PersonSummary handles POST /api/people/{id}/summary: generates a short
// natural-language summary of the person from their memories and life events.
func (h *API) PersonSummary(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		respondError(w, http.StatusServiceUnavailable, "no LLM provider configured", nil)
		return
	}

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

	memories, err := h.store.ListMemories(r.Context(), storage.ListOptions{
		PersonID: id,
		Limit:    50,
		SortBy:   "created_at",
	})
	if err != nil {
		respondStorageError(w, "failed to list memories", err)
		return
	}
	memoryLines := make([]string, 0, len(memories.Items))
	for _, m := range memories.Items {
		memoryLines = append(memoryLines, m.Content)
	}

	events, err := h.store.ListEventsByPerson(r.Context(), id)
	if err != nil {
		respondStorageError(w, "failed to list events", err)
		return
	}
	eventLines := make([]string, 0, len(events))
	for _, e := range events {
		line := fmt.Sprintf("%s: %s", e.Kind, e.Title)
		if e.HappenedOn != nil {
			line = fmt.Sprintf("%s (%s)", line, e.HappenedOn.Format("2006-01-02"))
		}
		eventLines = append(eventLines, line)
	}

	summary, err := h.generator.Complete(r.Context(),
		llm.PersonSummaryPrompt(person.Name, memoryLines, eventLines))
	if err != nil {
		respondLLMError(w, "summary generation failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"person_id": id,
		"summary":   summary,
	})
}

// respondLLMError maps model-layer failures: an open circuit breaker means
// the provider is known-down, so answer 503 instead of 502.
func respondLLMError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, llm.ErrCircuitOpen) {
		respondError(w, http.StatusServiceUnavailable, "LLM provider is unavailable", err)
		return
	}
	respondError(w, http.StatusBadGateway, message, err)
}
