package training

import "errors"

// Sentinel errors for training runs.
var (
	ErrNoTarget      = errors.New("no usable target column")
	ErrNoFeatures    = errors.New("no feature columns resolved")
	ErrTooFewRows    = errors.New("too few usable rows")
	ErrAllCandidates = errors.New("every candidate regressor failed")
)
