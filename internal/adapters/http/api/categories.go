package api

import (
	"net/http"
	"strings"

	"github.com/okian/salarycast/internal/domain/types"
)

// CategoriesHandler lists the valid values of a feature for UI enumeration.
type CategoriesHandler struct {
	deps Dependencies
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps Dependencies) *CategoriesHandler {
	return &CategoriesHandler{deps: deps}
}

type categoriesResponse struct {
	Feature string           `json:"feature"`
	Values  []string         `json:"values"`
	Options []types.Category `json:"options"`
}

// HandleGetCategories handles GET /categories/{feature}.
func (h *CategoriesHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	feature := strings.TrimPrefix(r.URL.Path, "/categories/")
	if feature == "" || strings.Contains(feature, "/") {
		writeBadRequest(w, ErrBadRequest)
		return
	}
	opts, err := h.deps.ValidLabels(feature)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	resp := categoriesResponse{Feature: feature, Values: make([]string, len(opts)), Options: opts}
	for i, o := range opts {
		resp.Values[i] = o.Code
	}
	writeJSON(w, http.StatusOK, resp)
}
