package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/config"
)

func newEncodersCmd(g *globals) *cobra.Command {
	var data datasetFlags

	cmd := &cobra.Command{
		Use:   "encoders",
		Short: "Build and persist the encoders and column mappings only",
		Long: `Resolve the dataset's columns against the alias table and build one
category codec per categorical feature. Only encoders and column_mappings
are written, stamped with a fresh run id. A model from an earlier training
run no longer loads against them until "salarycast train" runs again.`,
		Example: `  salarycast encoders --data ds_salaries.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncoders(cmd.Context(), cmd.OutOrStdout(), g.cfg, data)
		},
	}

	data.register(cmd)
	return cmd
}

type encodersReport struct {
	RunID    string              `yaml:"run_id"`
	Store    string              `yaml:"store"`
	Fallback bool                `yaml:"fallback"`
	Mappings map[string]string   `yaml:"mappings"`
	Numeric  []string            `yaml:"numeric,omitempty"`
	Classes  map[string][]string `yaml:"classes"`
}

func runEncoders(ctx context.Context, out io.Writer, cfg *config.Config, data datasetFlags) error {
	tbl, err := loadTable(ctx, cfg, data.path, data.table)
	if err != nil {
		return err
	}

	enc, err := trainerFor(cfg).GenerateEncoders(ctx, tbl)
	if err != nil {
		return fmt.Errorf("generate encoders: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	if err := repository.SaveEncoders(ctx, store, enc.Codecs, enc.Columns); err != nil {
		return fmt.Errorf("save encoders: %w", err)
	}

	report := encodersReport{
		RunID:    enc.Columns.RunID,
		Store:    store.Location(),
		Fallback: enc.Columns.Fallback,
		Mappings: enc.Columns.Mappings,
		Numeric:  enc.Numeric,
		Classes:  make(map[string][]string, len(enc.Codecs)),
	}
	for name, c := range enc.Codecs {
		report.Classes[name] = c.Classes()
	}
	return writeYAML(out, report)
}
