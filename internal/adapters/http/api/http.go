// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/salarycast/internal/app"
	"github.com/okian/salarycast/internal/domain/artifact"
	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
	"github.com/okian/salarycast/pkg/logger"
	"github.com/okian/salarycast/pkg/metrics"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predict(ctx context.Context, p profile.Profile) (types.Prediction, error)
	PredictBatch(ctx context.Context, profiles []profile.Profile) ([]service.BatchResult, error)
	ValidLabels(name string) ([]types.Category, error)
	Bundle() (*artifact.Bundle, error)
	Reload(ctx context.Context) error
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	predictHandler    *PredictHandler
	categoriesHandler *CategoriesHandler
	modelHandler      *ModelHandler
	reloadHandler     *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(deps),
		statsHandler:      NewStatsHandler(statsProvider),
		predictHandler:    NewPredictHandler(deps),
		categoriesHandler: NewCategoriesHandler(deps),
		modelHandler:      NewModelHandler(deps),
		reloadHandler:     NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/predict/batch", MetricsMiddleware(s.predictHandler.HandleBatch, "predict_batch"))
	mux.HandleFunc("/categories/", MetricsMiddleware(s.categoriesHandler.HandleGetCategories, "categories"))
	mux.HandleFunc("/model", MetricsMiddleware(s.modelHandler.HandleGetModel, "model"))
	mux.HandleFunc("/admin/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err verbatim, including valid-value lists. Inference
// failures are logged and replaced with a generic message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := errorFor(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Error(ctx, "request failed", logger.String("code", body.Code), logger.Error(err))
	}
	writeJSON(w, status, body)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody(codeBadRequest, err.Error()))
}

func errorBody(code, msg string) types.ErrorBody {
	return types.ErrorBody{Code: code, Message: msg}
}
