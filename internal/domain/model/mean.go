package model

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Mean predicts the training target mean regardless of input.
type Mean struct {
	Value    float64 `json:"value"`
	Features int     `json:"features"`
}

// FitMean fits the baseline.
func FitMean(X [][]float64, y []float64) (*Mean, error) {
	d, err := dims(X)
	if err != nil {
		return nil, err
	}
	if len(y) != len(X) {
		return nil, fmt.Errorf("%w: %d targets for %d rows", ErrShapeMismatch, len(y), len(X))
	}
	return &Mean{Value: stat.Mean(y, nil), Features: d}, nil
}

func (m *Mean) Name() string { return KindMean }
func (m *Mean) Dims() int    { return m.Features }

func (m *Mean) Predict(x []float64) (float64, error) {
	if err := checkShape(m.Features, x); err != nil {
		return 0, err
	}
	return finite(m.Value)
}
