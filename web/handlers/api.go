// Package handlers provides HTTP handlers and middleware for the LifeGraph
// REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/scrypster/lifegraph/internal/config"
	"github.com/scrypster/lifegraph/internal/engine"
	"github.com/scrypster/lifegraph/internal/llm"
	"github.com/scrypster/lifegraph/internal/services"
	"github.com/scrypster/lifegraph/internal/storage"
)

// API holds the dependencies shared by all REST handlers. Handler methods
// are spread over the entity files in this package (people.go,
// relationships.go, memories.go, ...).
type API struct {
	store    storage.Store
	config   *config.Config
	worker   *engine.TaggingWorker
	hub      *WebSocketHub
	settings *services.SettingsService

	// generator may be nil when no LLM provider is configured; AI endpoints
	// then answer 503 without touching the model layer.
	generator llm.TextGenerator
}

// NewAPI creates the handler set. worker, hub, settings, and generator are
// all optional; the corresponding features degrade gracefully when absent.
func NewAPI(store storage.Store, cfg *config.Config) *API {
	return &API{store: store, config: cfg}
}

// WithWorker attaches the async tagging worker pool.
func (h *API) WithWorker(w *engine.TaggingWorker) *API {
	h.worker = w
	return h
}

// WithHub attaches the WebSocket hub for activity broadcasts.
func (h *API) WithHub(hub *WebSocketHub) *API {
	h.hub = hub
	return h
}

// WithSettings attaches the user-settings service.
func (h *API) WithSettings(s *services.SettingsService) *API {
	h.settings = s
	return h
}

// WithGenerator attaches the text generator powering the AI endpoints.
func (h *API) WithGenerator(g llm.TextGenerator) *API {
	h.generator = g
	return h
}

// broadcast pushes an activity message to connected WebSocket clients, if a
// hub is attached.
func (h *API) broadcast(msg interface{}) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// extractID extracts a path parameter registered with a {key} pattern.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// parseListOptions builds ListOptions from the common query parameters.
func parseListOptions(r *http.Request) storage.ListOptions {
	q := r.URL.Query()
	return storage.ListOptions{
		Page:      parseInt(q.Get("page"), 1),
		Limit:     parseInt(q.Get("limit"), 20),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		PersonID:  q.Get("person_id"),
		Query:     q.Get("q"),
		Tag:       q.Get("tag"),
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more we can do.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}
	respondJSON(w, statusCode, errResp)
}

// respondStorageError maps the storage sentinel errors onto HTTP statuses:
// not-found is 404, validation failures are 400, and constraint conflicts
// (duplicate edge, type still in use) are 409. Anything else is a 500.
func respondStorageError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, message, err)
	case errors.Is(err, storage.ErrSelfRelationship),
		errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, storage.ErrTypeInUse):
		respondError(w, http.StatusConflict, message, err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}

// decodeJSON decodes a request body into dst, rejecting unknown fields so
// client typos surface as 400s instead of silently dropped data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
