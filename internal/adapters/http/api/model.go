package api

import (
	"net/http"

	"github.com/okian/salarycast/internal/domain/model"
)

// ModelHandler exposes the loaded model metadata.
type ModelHandler struct {
	deps Dependencies
}

// NewModelHandler creates a new model handler.
func NewModelHandler(deps Dependencies) *ModelHandler {
	return &ModelHandler{deps: deps}
}

type modelResponse struct {
	model.Info
	Dims            int               `json:"dims"`
	Encoders        []string          `json:"encoders"`
	Mappings        map[string]string `json:"mappings"`
	ReverseMappings map[string]string `json:"reverse_mappings"`
	Fallback        bool              `json:"fallback"`
}

// HandleGetModel handles GET /model.
func (h *ModelHandler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	b, err := h.deps.Bundle()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, modelResponse{
		Info:            b.Info,
		Dims:            b.Model.Dims(),
		Encoders:        b.Codecs.Features(),
		Mappings:        b.Columns.Mappings,
		ReverseMappings: b.Columns.Reverse,
		Fallback:        b.Columns.Fallback,
	})
}
