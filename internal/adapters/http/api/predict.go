package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
)

// PredictHandler handles single and batch prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

type batchRequest struct {
	Profiles []profile.Profile `json:"profiles"`
}

type batchResponse struct {
	Results   []types.BatchItem `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// HandlePredict handles POST /predict. The body is a job profile object whose
// values are raw codes or display labels.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var p profile.Profile
	if err := decodeBody(w, r, &p); err != nil {
		writeBadRequest(w, err)
		return
	}
	pred, err := h.deps.Predict(r.Context(), p)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// HandleBatch handles POST /predict/batch. Element failures are reported in
// place; the response is 200 unless the batch as a whole is rejected.
func (h *PredictHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if !h.deps.Ready() {
		writeError(r.Context(), w, errNotReady)
		return
	}
	results, err := h.deps.PredictBatch(r.Context(), req.Profiles)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	resp := batchResponse{Results: make([]types.BatchItem, len(results))}
	for i, res := range results {
		item := types.BatchItem{Index: i, Prediction: res.Prediction}
		if res.Err != nil {
			_, body := errorFor(res.Err)
			item.Error = &body
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}
