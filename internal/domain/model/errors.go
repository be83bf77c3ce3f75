package model

import "errors"

// Sentinel errors for regressors.
var (
	ErrShapeMismatch = errors.New("feature vector shape mismatch")
	ErrNonFinite     = errors.New("non-finite prediction")
	ErrUnknownKind   = errors.New("unknown model kind")
	ErrNoRows        = errors.New("no training rows")
	ErrSingular      = errors.New("singular system")
	ErrCorruptModel  = errors.New("corrupt model")
)
