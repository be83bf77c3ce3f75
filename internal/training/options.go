package training

import (
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/model"
	"github.com/okian/salarycast/pkg/logger"
)

// Option configures a Trainer.
type Option func(*Trainer)

// WithTargetColumn forces the target column instead of detecting it.
func WithTargetColumn(name string) Option {
	return func(t *Trainer) {
		t.targetColumn = name
	}
}

// WithTestFraction sets the held-out share used for model selection.
func WithTestFraction(f float64) Option {
	return func(t *Trainer) {
		if f > 0 && f < 1 {
			t.testFraction = f
		}
	}
}

// WithSeed sets the split seed.
func WithSeed(seed int64) Option {
	return func(t *Trainer) {
		t.seed = seed
	}
}

// WithAliases replaces the curated alias table.
func WithAliases(aliases []columns.Alias) Option {
	return func(t *Trainer) {
		t.aliases = aliases
	}
}

// WithTreeParams sets regression tree limits.
func WithTreeParams(p model.TreeParams) Option {
	return func(t *Trainer) {
		t.tree = p
	}
}

// WithRidgeLambda sets the ridge penalty.
func WithRidgeLambda(lambda float64) Option {
	return func(t *Trainer) {
		if lambda > 0 {
			t.ridgeLambda = lambda
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}
