package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/features"
	"github.com/okian/salarycast/internal/domain/labels"
)

// Sentinel kinds for prediction failures.
var (
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrInferenceFailure  = errors.New("inference failure")
	ErrNotLoaded         = errors.New("artifacts not loaded")
	ErrUnknownFeature    = errors.New("unknown feature")
	ErrBatchTooLarge     = errors.New("batch too large")
)

// Error kinds as reported to callers and metrics.
const (
	KindIncompleteProfile = "incomplete_profile"
	KindUnresolvableLabel = "unresolvable_label"
	KindUnknownCategory   = "unknown_category"
	KindTypeMismatch      = "type_mismatch"
	KindInferenceFailure  = "inference_failure"
	KindNotReady          = "not_ready"
	KindMissingArtifact   = "missing_artifact"
	KindInternal          = "internal"
)

// IncompleteProfileError names the required fields that were absent.
type IncompleteProfileError struct {
	Fields []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Unwrap exposes ErrIncompleteProfile to errors.Is.
func (e *IncompleteProfileError) Unwrap() error { return ErrIncompleteProfile }

// PredictionError records the state a prediction failed in.
type PredictionError struct {
	Stage State
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed while %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrIncompleteProfile):
		return KindIncompleteProfile
	case errors.Is(err, labels.ErrUnresolvableLabel):
		return KindUnresolvableLabel
	case errors.Is(err, codec.ErrUnknownCategory):
		return KindUnknownCategory
	case errors.Is(err, features.ErrTypeMismatch):
		return KindTypeMismatch
	case errors.Is(err, ErrInferenceFailure):
		return KindInferenceFailure
	case errors.Is(err, ErrNotLoaded):
		return KindNotReady
	case errors.Is(err, repository.ErrMissingArtifact):
		return KindMissingArtifact
	default:
		return KindInternal
	}
}
