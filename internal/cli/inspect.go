package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/config"
	"github.com/okian/salarycast/internal/domain/columns"
	domain "github.com/okian/salarycast/internal/domain/dataset"
	"github.com/okian/salarycast/internal/training"
)

func newInspectCmd(g *globals) *cobra.Command {
	var data datasetFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report artifact state and dataset column checks",
		Long: `Inspect prints, as YAML, which artifacts are present in the store, the
encoder classes, the column mappings and the loaded model's metadata.
With --data it also checks every mapped column against the dataset and
suggests similarly named columns for the ones that are missing.`,
		Example: `  salarycast inspect
  salarycast inspect --data ds_salaries.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), g.cfg, data)
		},
	}

	data.register(cmd)
	return cmd
}

type inspectReport struct {
	Store     storeReport            `yaml:"store"`
	Artifacts map[string]bool        `yaml:"artifacts"`
	Model     *modelReport           `yaml:"model,omitempty"`
	Encoders  map[string]codecReport `yaml:"encoders,omitempty"`
	Columns   *columns.Registry      `yaml:"columns,omitempty"`
	Dataset   *datasetReport         `yaml:"dataset,omitempty"`
	Problems  []string               `yaml:"problems,omitempty"`
	Fixes     []string               `yaml:"recommendations,omitempty"`

	mixedRuns bool
}

type storeReport struct {
	Kind     string `yaml:"kind"`
	Location string `yaml:"location"`
}

type modelReport struct {
	RunID    string             `yaml:"run_id,omitempty"`
	Name     string             `yaml:"name"`
	Target   string             `yaml:"target"`
	Features []string           `yaml:"features"`
	Dims     int                `yaml:"dims"`
	Scores   map[string]float64 `yaml:"scores,omitempty"`
}

type codecReport struct {
	Count   int      `yaml:"count"`
	Classes []string `yaml:"classes"`
}

type datasetReport struct {
	Path        string         `yaml:"path"`
	Rows        int            `yaml:"rows"`
	Columns     []string       `yaml:"columns"`
	Categorical map[string]int `yaml:"categorical"`
	Checks      []columnCheck  `yaml:"checks,omitempty"`
	Warnings    int            `yaml:"skipped_rows,omitempty"`
}

type columnCheck struct {
	Feature string   `yaml:"feature"`
	Column  string   `yaml:"column"`
	Found   bool     `yaml:"found"`
	Similar []string `yaml:"similar,omitempty"`
}

func runInspect(ctx context.Context, out io.Writer, cfg *config.Config, data datasetFlags) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	report, err := inspectStore(ctx, store)
	if err != nil {
		return err
	}

	if data.path != "" {
		tbl, err := loadTable(ctx, cfg, data.path, data.table)
		if err != nil {
			report.Problems = append(report.Problems, fmt.Sprintf("dataset %s: %v", data.path, err))
		} else {
			report.Dataset = inspectDataset(tbl, data.path, report.Columns)
			for _, c := range report.Dataset.Checks {
				if !c.Found {
					report.Problems = append(report.Problems,
						fmt.Sprintf("column %q for %s not in dataset", c.Column, c.Feature))
				}
			}
		}
	}

	report.Fixes = recommendations(report)
	return writeYAML(out, report)
}

// inspectStore reports artifact presence and whatever can be decoded.
func inspectStore(ctx context.Context, store repository.Store) (*inspectReport, error) {
	status, err := repository.Status(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("read artifact status: %w", err)
	}
	report := &inspectReport{
		Store:     storeReport{Kind: store.Name(), Location: store.Location()},
		Artifacts: status,
	}

	if codecs, reg, err := repository.LoadEncoders(ctx, store); err != nil {
		report.Problems = append(report.Problems, err.Error())
	} else {
		report.Columns = &reg
		report.Encoders = make(map[string]codecReport, len(codecs))
		for name, c := range codecs {
			report.Encoders[name] = codecReport{Count: c.Len(), Classes: c.Classes()}
		}
	}

	b, err := repository.LoadBundle(ctx, store)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
		report.mixedRuns = errors.Is(err, repository.ErrRunMismatch)
		return report, nil
	}
	report.Model = &modelReport{
		RunID:    b.Info.RunID,
		Name:     b.Info.ModelName,
		Target:   b.Info.TargetName,
		Features: b.Info.FeatureNames,
		Dims:     b.Model.Dims(),
		Scores:   b.Info.Scores,
	}
	return report, nil
}

// inspectDataset summarizes tbl and checks the registry's columns against it.
func inspectDataset(tbl *domain.Table, path string, reg *columns.Registry) *datasetReport {
	ds := &datasetReport{
		Path:        path,
		Rows:        tbl.Len(),
		Columns:     tbl.Headers,
		Categorical: make(map[string]int),
		Warnings:    len(tbl.Warnings),
	}
	for _, h := range tbl.Categorical() {
		if training.SalaryLike(h) {
			continue
		}
		values, err := tbl.Distinct(h)
		if err == nil {
			ds.Categorical[h] = len(values)
		}
	}

	if reg == nil {
		return ds
	}
	for _, logical := range reg.Names() {
		actual, _ := reg.Actual(logical)
		check := columnCheck{Feature: logical, Column: actual}
		if _, ok := tbl.Index(actual); ok {
			check.Found = true
		} else {
			check.Similar = similarColumns(actual, tbl.Headers)
		}
		ds.Checks = append(ds.Checks, check)
	}
	return ds
}

// similarColumns returns headers whose normalized name contains, or is
// contained in, the normalized want.
func similarColumns(want string, headers []string) []string {
	w := columns.NormalizeName(want)
	var out []string
	for _, h := range headers {
		n := columns.NormalizeName(h)
		if n == "" || w == "" {
			continue
		}
		if strings.Contains(n, w) || strings.Contains(w, n) {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}

func recommendations(r *inspectReport) []string {
	var out []string
	missing := 0
	for _, ok := range r.Artifacts {
		if !ok {
			missing++
		}
	}
	switch {
	case missing == len(r.Artifacts):
		out = append(out, "run: salarycast train --data <dataset>")
	case missing > 0 && r.Encoders != nil && r.Model == nil:
		out = append(out, "encoders exist without a model; run: salarycast train --data <dataset>")
	case missing > 0:
		out = append(out, "artifacts are incomplete; retrain to write all four together")
	case r.mixedRuns:
		out = append(out, "artifacts come from different training runs; run: salarycast train --data <dataset>")
	}
	if r.Dataset != nil {
		for _, c := range r.Dataset.Checks {
			if !c.Found {
				out = append(out, "dataset columns differ from the trained mappings; run: salarycast train --data <dataset>")
				break
			}
		}
	}
	return out
}
