// Package service provides the prediction service behind the HTTP API and CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/domain/artifact"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/features"
	"github.com/okian/salarycast/internal/domain/labels"
	"github.com/okian/salarycast/internal/domain/model"
	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
	"github.com/okian/salarycast/pkg/logger"
	"github.com/okian/salarycast/pkg/metrics"
)

// loaded is one immutable generation of artifacts plus the label tables
// derived from it.
type loaded struct {
	bundle   *artifact.Bundle
	tables   map[string]labels.Table
	loadedAt time.Time
}

// Service estimates salaries from job profiles against a loaded bundle.
type Service struct {
	mu sync.Mutex

	store   repository.Store
	current atomic.Pointer[loaded]

	// Configuration
	maxBatchSize     int
	batchConcurrency int
	reloadInterval   time.Duration

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// Counters
	succeeded atomic.Int64
	failed    atomic.Int64
	reloads   atomic.Int64

	logger logger.Logger
}

// BatchResult holds the outcome of one batch element.
type BatchResult struct {
	Prediction *types.Prediction
	Err        error
}

// New constructs a Service reading artifacts from store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		maxBatchSize:     100,
		batchConcurrency: runtime.NumCPU(),
		stopCh:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("predictor")
	return s
}

// Load reads and validates the artifact bundle and makes it current. A
// missing artifact is fatal for a process that has nothing loaded yet.
func (s *Service) Load(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload replaces the current bundle with a freshly loaded one. On failure
// the previous bundle stays in service.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := repository.LoadBundle(ctx, s.store)
	if err != nil {
		metrics.RecordArtifactReload(false, 0)
		s.logger.Error(ctx, "artifact load failed",
			logger.String("store", s.store.Name()),
			logger.String("location", s.store.Location()),
			logger.Bool("serving_previous", s.current.Load() != nil),
			logger.Error(err),
		)
		return err
	}
	s.Swap(ctx, b)
	return nil
}

// Swap makes b the current bundle. It is the single point where the
// served artifacts change.
func (s *Service) Swap(ctx context.Context, b *artifact.Bundle) {
	next := &loaded{bundle: b, tables: buildTables(b), loadedAt: time.Now()}
	s.current.Store(next)
	s.reloads.Add(1)

	metrics.RecordArtifactReload(true, next.loadedAt.Unix())
	metrics.UpdateModelFeatureCount(len(b.Info.FeatureNames))
	for _, name := range b.Codecs.Features() {
		metrics.UpdateCodecClassCount(name, b.Codecs[name].Len())
	}
	s.logger.Info(ctx, "artifacts loaded",
		logger.String("model", b.Info.ModelName),
		logger.Strings("features", b.Info.FeatureNames),
		logger.Strings("encoders", b.Codecs.Features()),
		logger.Bool("fallback_columns", b.Columns.Fallback),
	)
}

// buildTables derives the display label tables for the bundle's features.
func buildTables(b *artifact.Bundle) map[string]labels.Table {
	out := make(map[string]labels.Table)
	for _, name := range []string{columns.ExperienceLevel, columns.EmploymentType, columns.CompanySize, columns.RemoteRatio} {
		if t, ok := labels.For(name); ok {
			out[name] = t
		}
	}
	for _, name := range []string{columns.CompanyLocation, columns.EmployeeResidence} {
		var classes []string
		if c, ok := b.Codecs[name]; ok {
			classes = c.Classes()
		}
		out[name] = labels.Countries(name, classes)
	}
	return out
}

// Start begins polling the store when a reload interval is configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	if s.reloadInterval <= 0 {
		return nil
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.reloadInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				_ = s.Reload(ctx)
			}
		}
	}()
	s.logger.Info(ctx, "artifact polling started", logger.String("interval", s.reloadInterval.String()))
	return nil
}

// Stop ends polling and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.mu.Unlock()

	s.wg.Wait()
	if s.store != nil {
		_ = s.store.Close()
	}
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Ready reports whether a bundle is loaded.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Bundle returns the current bundle.
func (s *Service) Bundle() (*artifact.Bundle, error) {
	cur := s.current.Load()
	if cur == nil {
		return nil, ErrNotLoaded
	}
	return cur.bundle, nil
}

// Info returns the current model metadata.
func (s *Service) Info() (model.Info, error) {
	b, err := s.Bundle()
	if err != nil {
		return model.Info{}, err
	}
	return b.Info, nil
}

// Predict runs one profile through Validating, Encoding and Inferring. It
// never retries and never returns a partial result.
func (s *Service) Predict(ctx context.Context, p profile.Profile) (types.Prediction, error) {
	start := time.Now()
	cur := s.current.Load()
	if cur == nil {
		metrics.RecordPredictionFailure(KindNotReady)
		return types.Prediction{}, ErrNotLoaded
	}

	pred, err := s.predict(ctx, cur, p)
	latency := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		s.failed.Add(1)
		metrics.RecordPrediction(false, latency)
		metrics.RecordPredictionFailure(Kind(err))
		return types.Prediction{}, err
	}
	s.succeeded.Add(1)
	metrics.RecordPrediction(true, latency)
	return pred, nil
}

func (s *Service) predict(ctx context.Context, cur *loaded, p profile.Profile) (types.Prediction, error) {
	b := cur.bundle
	state := StateIdle
	enter := func(next State) {
		s.logger.Debug(ctx, "prediction state",
			logger.String("from", state.String()),
			logger.String("to", next.String()),
		)
		state = next
	}
	fail := func(err error) error {
		stage := state
		enter(StateFailed)
		return &PredictionError{Stage: stage, Err: err}
	}

	enter(StateValidating)
	if missing := p.Missing(); len(missing) > 0 {
		return types.Prediction{}, fail(&IncompleteProfileError{Fields: missing})
	}
	resolved, err := resolve(cur.tables, b.Codecs, p)
	if err != nil {
		return types.Prediction{}, fail(err)
	}

	enter(StateEncoding)
	vec, err := features.Build(resolved, b.Codecs, b.Info.FeatureNames)
	if err != nil {
		return types.Prediction{}, fail(err)
	}
	for _, name := range vec.Filled {
		metrics.RecordDefaultFilled(name)
	}
	if len(vec.Filled) > 0 {
		s.logger.Debug(ctx, "default-filled features", logger.Strings("features", vec.Filled))
	}

	enter(StateInferring)
	y, err := b.Model.Predict(vec.Values)
	if err != nil {
		s.logger.Error(ctx, "model inference failed",
			logger.String("model", b.Info.ModelName),
			logger.Int("vector_len", vec.Len()),
			logger.Int("model_dims", b.Model.Dims()),
			logger.Int("feature_names", len(b.Info.FeatureNames)),
			logger.Error(err),
		)
		return types.Prediction{}, fail(fmt.Errorf("%w: %w", ErrInferenceFailure, err))
	}

	enter(StateDone)
	return types.NewPrediction(y, b.Info.ModelName, display(cur.tables, resolved)), nil
}

// resolve maps display labels to raw codes for every field with a label
// table. A value that is already one of the field's codec classes, such as
// codec.Unknown, is kept as is. Other fields pass through trimmed.
func resolve(tables map[string]labels.Table, codecs codec.Set, p profile.Profile) (profile.Profile, error) {
	out := make(profile.Profile, len(p))
	for _, name := range p.Names() {
		v, ok := p.Value(name)
		if !ok {
			continue
		}
		t, has := tables[name]
		c, encoded := codecs.Get(name)
		switch {
		case !has, encoded && c.Contains(v):
			out[name] = v
		case labels.IsCountryFeature(name):
			code, err := labels.ResolveCountry(t, v)
			if err != nil {
				return nil, err
			}
			out[name] = code
		default:
			code, err := t.Resolve(v)
			if err != nil {
				return nil, err
			}
			out[name] = code
		}
	}
	return out, nil
}

// display renders resolved codes back as display labels.
func display(tables map[string]labels.Table, p profile.Profile) map[string]string {
	out := make(map[string]string, len(p))
	for name, v := range p {
		if t, ok := tables[name]; ok {
			out[name] = t.Label(v)
			continue
		}
		out[name] = v
	}
	return out
}

// PredictBatch predicts every profile concurrently. Each element carries its
// own result or error; only a batch over the size limit fails as a whole.
func (s *Service) PredictBatch(ctx context.Context, profiles []profile.Profile) ([]BatchResult, error) {
	if len(profiles) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d profiles, limit %d", ErrBatchTooLarge, len(profiles), s.maxBatchSize)
	}
	metrics.RecordBatchSize(len(profiles))

	results := make([]BatchResult, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, p := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			pred, err := s.Predict(gctx, p)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Prediction = &pred
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// ValidCategories returns the raw values accepted for a feature: the codec
// classes when the feature is encoded, otherwise its fixed code table.
func (s *Service) ValidCategories(name string) ([]string, error) {
	cur := s.current.Load()
	if cur == nil {
		return nil, ErrNotLoaded
	}
	if c, ok := cur.bundle.Codecs[name]; ok {
		return c.Classes(), nil
	}
	if t, ok := labels.For(name); ok {
		return t.Codes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
}

// ValidLabels pairs each valid value of a feature with its display label.
func (s *Service) ValidLabels(name string) ([]types.Category, error) {
	codes, err := s.ValidCategories(name)
	if err != nil {
		return nil, err
	}
	t, hasTable := s.current.Load().tables[name]
	out := make([]types.Category, len(codes))
	for i, code := range codes {
		label := code
		if hasTable {
			label = t.Label(code)
		}
		out[i] = types.Category{Code: code, Label: label}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":     started,
		"ready":       s.Ready(),
		"store":       s.store.Name(),
		"location":    s.store.Location(),
		"succeeded":   s.succeeded.Load(),
		"failed":      s.failed.Load(),
		"reloads":     s.reloads.Load(),
		"maxBatch":    s.maxBatchSize,
		"concurrency": s.batchConcurrency,
	}
	if cur := s.current.Load(); cur != nil {
		stats["model"] = cur.bundle.Info.ModelName
		stats["features"] = len(cur.bundle.Info.FeatureNames)
		stats["encoders"] = len(cur.bundle.Codecs)
		stats["loadedAt"] = cur.loadedAt.UTC().Format(time.RFC3339)
	}
	return stats
}

// IsClientError reports whether err is caused by the request rather than
// the service.
func IsClientError(err error) bool {
	switch Kind(err) {
	case KindIncompleteProfile, KindUnresolvableLabel, KindUnknownCategory, KindTypeMismatch:
		return true
	}
	return errors.Is(err, ErrBatchTooLarge) || errors.Is(err, ErrUnknownFeature)
}
