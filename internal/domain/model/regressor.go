// Package model holds the fitted regressors, their persisted form and the
// metadata recorded when a model is trained.
package model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Regressor maps a feature vector of length Dims to a scalar.
type Regressor interface {
	Name() string
	Dims() int
	Predict(x []float64) (float64, error)
}

// Info describes a trained model. FeatureNames is authoritative for vector order.
type Info struct {
	ModelName    string             `json:"model_name"`
	FeatureNames []string           `json:"feature_names"`
	TargetName   string             `json:"target_name"`
	TrainedAt    time.Time          `json:"trained_at,omitzero"`
	Rows         int                `json:"rows,omitempty"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	// RunID names the training run. Every artifact of a bundle carries it.
	RunID string `json:"run_id,omitempty"`
}

func checkShape(dims int, x []float64) error {
	if len(x) != dims {
		return fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, len(x), dims)
	}
	return nil
}

func finite(y float64) (float64, error) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, ErrNonFinite
	}
	return y, nil
}

// R2 returns the coefficient of determination of pred against actual. A
// constant target scores 1 when predicted exactly and 0 otherwise.
func R2(actual, pred []float64) float64 {
	if len(actual) == 0 || len(actual) != len(pred) {
		return math.Inf(-1)
	}
	if stat.Variance(actual, nil) > 0 {
		return stat.RSquaredFrom(pred, actual, nil)
	}
	if floats.Same(actual, pred) {
		return 1
	}
	return 0
}

// Score predicts every row of X with r and returns the R2 against y.
func Score(r Regressor, X [][]float64, y []float64) (float64, error) {
	pred := make([]float64, len(X))
	for i, row := range X {
		p, err := r.Predict(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		pred[i] = p
	}
	return R2(y, pred), nil
}

func dims(X [][]float64) (int, error) {
	if len(X) == 0 {
		return 0, ErrNoRows
	}
	d := len(X[0])
	for i, row := range X {
		if len(row) != d {
			return 0, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), d)
		}
	}
	return d, nil
}
