// Package artifact groups the four persisted outputs of a training run.
package artifact

import (
	"errors"
	"fmt"

	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/model"
)

// Artifact names. Stores derive file names and keys from these.
const (
	Model          = "model"
	Encoders       = "encoders"
	ColumnMappings = "column_mappings"
	ModelInfo      = "model_info"
)

// Names lists every artifact a complete bundle needs, in load order.
var Names = []string{Model, Encoders, ColumnMappings, ModelInfo}

// Sentinel validation errors.
var (
	ErrInvalidBundle     = errors.New("invalid artifact bundle")
	ErrUnknownEncoderKey = errors.New("unknown encoder key")
)

// Bundle is one consistent, read-only set of artifacts.
type Bundle struct {
	Model   model.Regressor
	Codecs  codec.Set
	Columns columns.Registry
	Info    model.Info
}

// Validate checks the cross-artifact contract: the model consumes exactly
// the recorded features, feature names are unique, and every codec is keyed
// by a known logical feature (or a fallback-bound column).
func (b *Bundle) Validate() error {
	if b.Model == nil {
		return fmt.Errorf("%w: no model", ErrInvalidBundle)
	}
	names := b.Info.FeatureNames
	if len(names) == 0 {
		return fmt.Errorf("%w: model_info has no feature_names", ErrInvalidBundle)
	}
	if b.Model.Dims() != len(names) {
		return fmt.Errorf("%w: model expects %d features, model_info lists %d",
			ErrInvalidBundle, b.Model.Dims(), len(names))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: feature %q listed twice", ErrInvalidBundle, n)
		}
		seen[n] = struct{}{}
	}
	for _, name := range b.Codecs.Features() {
		if !columns.Known(name) && !(b.Columns.Fallback && b.Columns.Has(name)) {
			return fmt.Errorf("%w: %q", ErrUnknownEncoderKey, name)
		}
		if b.Codecs[name] == nil || b.Codecs[name].Len() == 0 {
			return fmt.Errorf("%w: encoder %q has no classes", ErrInvalidBundle, name)
		}
	}
	return nil
}

// Encoded reports whether the feature has a codec.
func (b *Bundle) Encoded(feature string) bool {
	_, ok := b.Codecs[feature]
	return ok
}
