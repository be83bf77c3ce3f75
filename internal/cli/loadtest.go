package cli

import (
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/salarycast/internal/loadtest"
)

// Default load test parameters.
const (
	defaultLoadProfiles = 1000
	defaultLoadBatch    = 25
	defaultLoadTimeout  = 30 * time.Second
	defaultLoadDeadline = 10 * time.Minute
)

func newLoadTestCmd(_ *globals) *cobra.Command {
	cfg := &loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive a running server with generated profiles and verify responses",
		Long: `Loadtest reads the server's model and category listings, generates valid
and deliberately broken profiles, posts them to /predict and /predict/batch
concurrently, and checks every status and error code. Batch results must
reproduce the single-call salaries exactly.`,
		Example: `  salarycast loadtest --url http://localhost:9080 --profiles 5000 --workers 16`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultLoadDeadline)
			defer cancel()

			stats, err := loadtest.Run(ctx, cfg)
			if stats != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				_ = enc.Encode(stats)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	cmd.Flags().IntVar(&cfg.NumProfiles, "profiles", defaultLoadProfiles, "Number of profiles to generate and submit")
	cmd.Flags().Float64Var(&cfg.InvalidRatio, "invalid", 0.2, "Share of deliberately broken profiles")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch", defaultLoadBatch, "Profiles per batch request; 0 skips batches")
	cmd.Flags().IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultLoadTimeout, "HTTP request timeout")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", 1, "Seed for profile generation")
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "Write generated profiles to this file")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every unexpected response")
	return cmd
}
