package api

import (
	"net/http"

	service "github.com/okian/salarycast/internal/app"
)

// ReloadHandler swaps in the latest artifacts on demand.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /admin/reload. A failed reload leaves the
// previous artifacts serving and reports why.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Reload(r.Context()); err != nil {
		status, body := errorFor(err)
		if status < http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		body.Code = service.Kind(err)
		body.Message = err.Error()
		writeJSON(w, status, body)
		return
	}
	b, err := h.deps.Bundle()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "model_name": b.Info.ModelName})
}
