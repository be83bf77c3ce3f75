package training

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/dataset"
	"github.com/okian/salarycast/pkg/logger"
	"github.com/okian/salarycast/pkg/metrics"
)

// Encoders is the encoding metadata derived from a table.
type Encoders struct {
	Codecs  codec.Set
	Columns columns.Registry
	// Numeric lists logical features bound to numeric columns. They pass
	// through unencoded.
	Numeric []string
}

// SalaryLike reports whether a column holds salary data. Such columns are
// never features.
func SalaryLike(name string) bool {
	return strings.Contains(strings.ToLower(name), "salary")
}

// GenerateEncoders resolves the column registry and builds one codec per
// categorical logical feature. Codec classes come from the bound column's
// observed values with blanks recorded as codec.Unknown.
func (t *Trainer) GenerateEncoders(ctx context.Context, tbl *dataset.Table) (*Encoders, error) {
	var available, categorical []string
	for _, h := range tbl.Headers {
		if SalaryLike(h) {
			continue
		}
		available = append(available, h)
		if !tbl.IsNumeric(h) {
			categorical = append(categorical, h)
		}
	}

	reg := columns.Build(t.aliases, available, categorical)
	if reg.Len() == 0 {
		return nil, fmt.Errorf("%w: columns %v", ErrNoFeatures, tbl.Headers)
	}
	if reg.Fallback {
		t.logger.Warn(ctx, "no column alias matched; using categorical columns as their own features",
			logger.Strings("features", reg.Names()),
		)
	}

	reg.RunID = uuid.NewString()
	enc := &Encoders{Codecs: make(codec.Set), Columns: reg}
	for _, logical := range reg.Names() {
		actual, _ := reg.Actual(logical)
		if tbl.IsNumeric(actual) {
			enc.Numeric = append(enc.Numeric, logical)
			continue
		}
		values, err := tbl.Column(actual)
		if err != nil {
			return nil, err
		}
		c := codec.New(logical, values)
		enc.Codecs[logical] = c
		metrics.UpdateCodecClassCount(logical, c.Len())
		t.logger.Debug(ctx, "built codec",
			logger.String("feature", logical),
			logger.String("column", actual),
			logger.Int("classes", c.Len()),
		)
	}
	t.logger.Info(ctx, "encoders generated",
		logger.Int("codecs", len(enc.Codecs)),
		logger.Strings("numeric", enc.Numeric),
		logger.Bool("fallback", reg.Fallback),
	)
	return enc, nil
}
