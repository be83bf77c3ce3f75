package api

import (
	"net/http"

	service "github.com/okian/salarycast/internal/app"
)

var errNotReady = service.ErrNotLoaded

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// HandleHealth handles GET /healthz. It is 503 until artifacts are loaded.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := h.deps.Bundle()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: service.KindNotReady})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Model: b.Info.ModelName})
}
