package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/config"
	"github.com/okian/salarycast/internal/training"
	"github.com/okian/salarycast/pkg/logger"
)

type datasetFlags struct {
	path  string
	table string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.path, "data", "d", "", "Dataset path, CSV or SQLite (default config dataset_path)")
	cmd.Flags().StringVar(&f.table, "table", "", "Table name for SQLite datasets (default config dataset_table)")
}

func newTrainCmd(g *globals) *cobra.Command {
	var (
		data   datasetFlags
		target string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a salary model and persist all artifacts",
		Long: `Train fits the candidate regressors (mean, linear, ridge, tree) on a
seeded split of the dataset and keeps the best by held-out R2. The model,
encoders, column mappings and model info are written to the artifact store.`,
		Example: `  salarycast train --data ds_salaries.csv
  salarycast train --data salaries.db --table jobs --target salary`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target != "" {
				g.cfg.TargetColumn = target
			}
			return runTrain(cmd.Context(), cmd.OutOrStdout(), g.cfg, data)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "Target column (default: salary_in_usd, then the first salary column)")
	return cmd
}

type trainReport struct {
	training.Result `yaml:",inline"`
	Model           string   `yaml:"model"`
	Target          string   `yaml:"target"`
	Features        []string `yaml:"features"`
	Store           string   `yaml:"store"`
}

func trainerFor(cfg *config.Config) *training.Trainer {
	return training.New(
		training.WithTargetColumn(cfg.TargetColumn),
		training.WithTestFraction(cfg.TestFraction),
		training.WithSeed(cfg.Seed),
		training.WithLogger(logger.Get()),
	)
}

func runTrain(ctx context.Context, out io.Writer, cfg *config.Config, data datasetFlags) error {
	tbl, err := loadTable(ctx, cfg, data.path, data.table)
	if err != nil {
		return err
	}

	res, err := trainerFor(cfg).Train(ctx, tbl)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	if err := repository.SaveBundle(ctx, store, res.Bundle); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	logger.Get().Info(ctx, "artifacts saved",
		logger.String("store", store.Name()),
		logger.String("location", store.Location()),
		logger.String("model", res.Bundle.Info.ModelName),
	)

	return writeYAML(out, trainReport{
		Result:   *res,
		Model:    res.Bundle.Info.ModelName,
		Target:   res.Bundle.Info.TargetName,
		Features: res.Bundle.Info.FeatureNames,
		Store:    store.Location(),
	})
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
