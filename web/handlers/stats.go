package handlers

import (
	"net/http"

	"github.com/scrypster/lifegraph/internal/services"
)

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	People            int `json:"people"`
	Relationships     int `json:"relationships"`
	RelationshipTypes int `json:"relationship_types"`
	Memories          int `json:"memories"`
	LifeEvents        int `json:"life_events"`
	PendingTagging    int `json:"pending_tagging"`
	QueueSize         int `json:"queue_size"`
}

// GetStats handles GET /api/stats.
func (h *API) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondStorageError(w, "failed to collect stats", err)
		return
	}

	resp := StatsResponse{
		People:            stats.People,
		Relationships:     stats.Relationships,
		RelationshipTypes: stats.RelationshipTypes,
		Memories:          stats.Memories,
		LifeEvents:        stats.LifeEvents,
		PendingTagging:    stats.PendingTagging,
	}
	if h.worker != nil {
		resp.QueueSize = h.worker.QueueLength()
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetUserConfig handles GET /api/config/user.
func (h *API) GetUserConfig(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		respondError(w, http.StatusServiceUnavailable, "user settings are not available", nil)
		return
	}

	settings, err := h.settings.GetUserSettings()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load user settings", err)
		return
	}
	if settings.OwnerName == "" {
		// Fall back to the environment-provided name until one is saved.
		settings.OwnerName = h.config.User.OwnerName
	}
	respondJSON(w, http.StatusOK, settings)
}

// PostUserConfig handles POST /api/config/user.
func (h *API) PostUserConfig(w http.ResponseWriter, r *http.Request) {
	if h.settings == nil {
		respondError(w, http.StatusServiceUnavailable, "user settings are not available", nil)
		return
	}

	var req struct {
		OwnerName string `json:"owner_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.settings.SaveUserSettings(&services.UserSettings{OwnerName: req.OwnerName}); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save user settings", err)
		return
	}
	h.config.User.OwnerName = req.OwnerName
	respondJSON(w, http.StatusOK, map[string]string{"owner_name": req.OwnerName})
}

// Health handles GET /api/health. No auth required; used by monitoring.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
}
