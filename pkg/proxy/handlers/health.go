package handlers

import (
	"encoding/json"
	"net/http"

	"mercator-hq/callisto/pkg/proxy/types"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct {
	store   SessionStore
	version string
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(store SessionStore, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// ServeHTTP implements http.Handler for GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := &types.HealthResponse{
		Status:         "ok",
		Version:        h.version,
		ActiveSessions: h.store.Count(),
		MaxSessions:    h.store.MaxSessions(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
