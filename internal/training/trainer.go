// Package training fits the salary model offline and emits the artifact
// bundle the prediction service loads.
package training

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/salarycast/internal/domain/artifact"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/dataset"
	"github.com/okian/salarycast/internal/domain/model"
	"github.com/okian/salarycast/pkg/logger"
	"github.com/okian/salarycast/pkg/metrics"
)

// DefaultTarget is preferred when no target column is configured.
const DefaultTarget = "salary_in_usd"

// minRows is the smallest usable table: enough for a split with at least
// two training rows.
const minRows = 3

// Trainer turns a table into a validated artifact bundle.
type Trainer struct {
	targetColumn string
	testFraction float64
	seed         int64
	aliases      []columns.Alias
	tree         model.TreeParams
	ridgeLambda  float64
	logger       logger.Logger
}

// New constructs a Trainer with defaults.
func New(opts ...Option) *Trainer {
	t := &Trainer{
		testFraction: 0.2,
		seed:         42,
		aliases:      columns.DefaultAliases(),
		tree:         model.DefaultTreeParams(),
		ridgeLambda:  1,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get()
	}
	t.logger = t.logger.Named("trainer")
	return t
}

// CandidateScore is the held-out result of one candidate regressor.
type CandidateScore struct {
	Name  string  `json:"name" yaml:"name"`
	R2    float64 `json:"r2" yaml:"r2"`
	Error string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is the outcome of a training run.
type Result struct {
	RunID      uuid.UUID        `json:"run_id" yaml:"run_id"`
	Bundle     *artifact.Bundle `json:"-" yaml:"-"`
	Candidates []CandidateScore `json:"candidates" yaml:"candidates"`
	TrainRows  int              `json:"train_rows" yaml:"train_rows"`
	TestRows   int              `json:"test_rows" yaml:"test_rows"`
	Dropped    int              `json:"dropped_rows" yaml:"dropped_rows"`
}

type candidate struct {
	name string
	fit  func(X [][]float64, y []float64) (model.Regressor, error)
}

func (t *Trainer) candidates() []candidate {
	return []candidate{
		{model.KindMean, func(X [][]float64, y []float64) (model.Regressor, error) { return model.FitMean(X, y) }},
		{model.KindLinear, func(X [][]float64, y []float64) (model.Regressor, error) { return model.FitLinear(X, y) }},
		{model.KindRidge, func(X [][]float64, y []float64) (model.Regressor, error) {
			return model.FitRidge(X, y, t.ridgeLambda)
		}},
		{model.KindTree, func(X [][]float64, y []float64) (model.Regressor, error) { return model.FitTree(X, y, t.tree) }},
	}
}

// Train builds encoders, encodes the table, fits every candidate on a seeded
// split and keeps the one with the best held-out R2. Ties go to the earlier
// candidate.
func (t *Trainer) Train(ctx context.Context, tbl *dataset.Table) (*Result, error) {
	runID := uuid.New()
	t.logger.Info(ctx, "training started",
		logger.String("run_id", runID.String()),
		logger.Int("rows", tbl.Len()),
	)

	target, err := t.resolveTarget(tbl)
	if err != nil {
		return nil, err
	}
	enc, err := t.GenerateEncoders(ctx, tbl)
	if err != nil {
		return nil, err
	}
	enc.Columns.RunID = runID.String()
	featureNames := enc.Columns.Names()

	X, y, dropped, err := encodeRows(tbl, enc, featureNames, target)
	if err != nil {
		return nil, err
	}
	if len(X) < minRows {
		return nil, fmt.Errorf("%w: %d usable of %d", ErrTooFewRows, len(X), tbl.Len())
	}
	if dropped > 0 {
		t.logger.Warn(ctx, "dropped rows with missing numeric values",
			logger.Int("dropped", dropped),
			logger.Int("kept", len(X)),
		)
	}
	metrics.UpdateTrainingRows(len(X))

	trainIdx, testIdx := split(len(X), t.testFraction, t.seed)
	Xtr, ytr := pick(X, y, trainIdx)
	Xte, yte := pick(X, y, testIdx)

	cands := t.candidates()
	fitted := make([]model.Regressor, len(cands))
	scores := make([]CandidateScore, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i].Name = c.name
			r, err := c.fit(Xtr, ytr)
			if err != nil {
				scores[i].R2 = math.Inf(-1)
				scores[i].Error = err.Error()
				return nil
			}
			r2, err := model.Score(r, Xte, yte)
			if err != nil {
				scores[i].R2 = math.Inf(-1)
				scores[i].Error = err.Error()
				return nil
			}
			fitted[i], scores[i].R2 = r, r2
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := -1
	for i, s := range scores {
		if fitted[i] == nil {
			t.logger.Warn(ctx, "candidate failed", logger.String("candidate", s.Name), logger.String("reason", s.Error))
			continue
		}
		metrics.RecordTrainingCandidate(s.Name, s.R2)
		t.logger.Info(ctx, "candidate scored", logger.String("candidate", s.Name), logger.Float64("r2", s.R2))
		if best < 0 || s.R2 > scores[best].R2 {
			best = i
		}
	}
	if best < 0 {
		return nil, ErrAllCandidates
	}

	scoreMap := make(map[string]float64, len(scores))
	for i, s := range scores {
		if fitted[i] != nil {
			scoreMap[s.Name] = s.R2
		}
	}
	bundle := &artifact.Bundle{
		Model:   fitted[best],
		Codecs:  enc.Codecs,
		Columns: enc.Columns,
		Info: model.Info{
			ModelName:    fitted[best].Name(),
			FeatureNames: slices.Clone(featureNames),
			TargetName:   target,
			TrainedAt:    time.Now().UTC(),
			Rows:         len(X),
			Scores:       scoreMap,
			RunID:        runID.String(),
		},
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	t.logger.Info(ctx, "training complete",
		logger.String("run_id", runID.String()),
		logger.String("model", bundle.Info.ModelName),
		logger.Float64("r2", scores[best].R2),
		logger.String("target", target),
		logger.Strings("features", featureNames),
	)
	return &Result{
		RunID:      runID,
		Bundle:     bundle,
		Candidates: scores,
		TrainRows:  len(trainIdx),
		TestRows:   len(testIdx),
		Dropped:    dropped,
	}, nil
}

// resolveTarget picks the configured target, else salary_in_usd, else the
// first salary-like numeric column.
func (t *Trainer) resolveTarget(tbl *dataset.Table) (string, error) {
	if t.targetColumn != "" {
		if !tbl.IsNumeric(t.targetColumn) {
			return "", fmt.Errorf("%w: %q is missing or not numeric", ErrNoTarget, t.targetColumn)
		}
		return t.targetColumn, nil
	}
	if tbl.IsNumeric(DefaultTarget) {
		return DefaultTarget, nil
	}
	for _, h := range tbl.Headers {
		if SalaryLike(h) && tbl.IsNumeric(h) {
			return h, nil
		}
	}
	return "", fmt.Errorf("%w: no numeric salary column in %v", ErrNoTarget, tbl.Headers)
}

// encodeRows turns table rows into a matrix. Rows whose target or numeric
// features are missing are dropped. Blank categorical cells encode as Unknown.
func encodeRows(tbl *dataset.Table, enc *Encoders, featureNames []string, target string) ([][]float64, []float64, int, error) {
	ys, err := tbl.Numeric(target)
	if err != nil {
		return nil, nil, 0, err
	}
	cols := make([][]string, len(featureNames))
	nums := make([][]float64, len(featureNames))
	for j, name := range featureNames {
		actual, _ := enc.Columns.Actual(name)
		if _, ok := enc.Codecs[name]; ok {
			if cols[j], err = tbl.Column(actual); err != nil {
				return nil, nil, 0, err
			}
			continue
		}
		if nums[j], err = tbl.Numeric(actual); err != nil {
			return nil, nil, 0, err
		}
	}

	var X [][]float64
	var y []float64
	dropped := 0
rows:
	for i := range tbl.Rows {
		if math.IsNaN(ys[i]) {
			dropped++
			continue
		}
		row := make([]float64, len(featureNames))
		for j, name := range featureNames {
			if c, ok := enc.Codecs[name]; ok {
				raw := cols[j][i]
				if raw == "" {
					raw = codec.Unknown
				}
				code, err := c.Encode(raw)
				if err != nil {
					return nil, nil, 0, err
				}
				row[j] = float64(code)
				continue
			}
			if math.IsNaN(nums[j][i]) {
				dropped++
				continue rows
			}
			row[j] = nums[j][i]
		}
		X = append(X, row)
		y = append(y, ys[i])
	}
	return X, y, dropped, nil
}

// split shuffles row indices with a seeded generator and holds out frac of
// them, keeping at least one test row and two training rows.
func split(n int, frac float64, seed int64) (train, test []int) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(seed), 0)) //nolint:gosec // reproducible split, not security
	r.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	nTest := int(math.Round(float64(n) * frac))
	nTest = max(1, min(nTest, n-2))
	return idx[nTest:], idx[:nTest]
}

func pick(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	px := make([][]float64, len(idx))
	py := make([]float64, len(idx))
	for k, i := range idx {
		px[k], py[k] = X[i], y[i]
	}
	return px, py
}
