// Package cli wires the salarycast commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/salarycast/internal/adapters/dataset"
	"github.com/okian/salarycast/internal/adapters/repository"
	"github.com/okian/salarycast/internal/config"
	domain "github.com/okian/salarycast/internal/domain/dataset"
	"github.com/okian/salarycast/pkg/logger"
)

// globals carries state shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd builds the salarycast command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "salarycast",
		Short: "Salary prediction from job profiles",
		Long: `salarycast trains a salary regressor from a tabular dataset and serves
predictions over HTTP.

Training writes four artifacts (model, encoders, column_mappings,
model_info) to a file directory or a redis instance. The server loads
them, validates and encodes incoming job profiles in the model's feature
order, and returns an annual salary in USD.`,
		Example: `  salarycast train --data ds_salaries.csv
  salarycast serve
  salarycast predict --set job_role="Data Scientist" --set experience_level=SE ...
  salarycast inspect --data ds_salaries.csv`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (default $SALARYCAST_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(g),
		newEncodersCmd(g),
		newTrainCmd(g),
		newPredictCmd(g),
		newInspectCmd(g),
		newLoadTestCmd(g),
	)
	return root
}

// init loads configuration and sets up logging on the command's stderr.
func (g *globals) init(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadFile(g.configPath)
	} else {
		cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	if err := logger.InitWithFormat(cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	g.cfg = cfg
	return nil
}

// openStore opens the configured artifact store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.ArtifactStore {
	case config.StoreRedis:
		return repository.NewRedisStore(ctx, cfg.RedisAddr,
			repository.WithDB(cfg.RedisDB),
			repository.WithPassword(cfg.RedisPassword),
			repository.WithPrefix(cfg.RedisPrefix),
		)
	default:
		return repository.NewFileStore(cfg.ArtifactDir), nil
	}
}

// loadTable reads the training dataset named by path, or the configured one.
func loadTable(ctx context.Context, cfg *config.Config, path, table string) (*domain.Table, error) {
	if path == "" {
		path = cfg.DatasetPath
	}
	if table == "" {
		table = cfg.DatasetTable
	}
	src, err := dataset.Open(path, table)
	if err != nil {
		return nil, err
	}
	tbl, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.Get().Named("dataset")
	for _, w := range tbl.Warnings {
		log.Warn(ctx, "dataset row skipped", logger.Int("row", w.Row), logger.String("reason", w.Message))
	}
	log.Info(ctx, "dataset loaded",
		logger.String("path", path),
		logger.Int("rows", tbl.Len()),
		logger.Strings("columns", tbl.Headers),
	)
	return tbl, nil
}
