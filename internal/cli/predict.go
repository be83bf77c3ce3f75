package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/salarycast/internal/app"
	"github.com/okian/salarycast/internal/config"
	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/pkg/logger"
)

// ErrNoProfile is returned when predict gets neither --set nor --json.
var ErrNoProfile = errors.New("no profile given; use --set or --json")

func newPredictCmd(g *globals) *cobra.Command {
	var (
		fields   map[string]string
		jsonPath string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict salaries from the command line",
		Long: `Load the artifacts and predict one profile given with --set, or one
profile or an array of profiles read from a JSON file ("-" for stdin).
Values may be raw codes (SE, FT, US) or display labels (Senior-level,
Full-time, United States).`,
		Example: `  salarycast predict --set job_role="Data Scientist" --set experience_level=SE \
    --set employment_type=FT --set company_size=M --set company_location=US \
    --set employee_residence=US --set remote_ratio=100 --set work_year=2023
  salarycast predict --json profiles.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := readProfiles(cmd.InOrStdin(), fields, jsonPath)
			if err != nil {
				return err
			}
			return runPredict(cmd.Context(), cmd.OutOrStdout(), g.cfg, profiles)
		},
	}

	cmd.Flags().StringToStringVarP(&fields, "set", "s", nil, "Profile field as name=value (repeatable)")
	cmd.Flags().StringVarP(&jsonPath, "json", "j", "", `JSON file with a profile or an array of profiles ("-" for stdin)`)
	return cmd
}

// readProfiles builds profiles from --set fields or a JSON document.
func readProfiles(stdin io.Reader, fields map[string]string, jsonPath string) ([]profile.Profile, error) {
	if jsonPath == "" {
		if len(fields) == 0 {
			return nil, ErrNoProfile
		}
		return []profile.Profile{profile.Profile(fields)}, nil
	}

	var (
		data []byte
		err  error
	)
	if jsonPath == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(jsonPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("[")) {
		var many []profile.Profile
		if err := json.Unmarshal(data, &many); err != nil {
			return nil, fmt.Errorf("decode profiles: %w", err)
		}
		return many, nil
	}
	var one profile.Profile
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if one == nil {
		one = profile.Profile{}
	}
	for k, v := range fields {
		one[k] = v
	}
	return []profile.Profile{one}, nil
}

type predictOutput struct {
	Index      int    `json:"index"`
	Prediction any    `json:"prediction,omitempty"`
	Error      string `json:"error,omitempty"`
	Kind       string `json:"kind,omitempty"`
}

func runPredict(ctx context.Context, out io.Writer, cfg *config.Config, profiles []profile.Profile) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	svc := service.New(store,
		service.WithLogger(logger.Get()),
		service.WithMaxBatchSize(max(cfg.MaxBatchSize, len(profiles))),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if len(profiles) == 1 {
		pred, err := svc.Predict(ctx, profiles[0])
		if err != nil {
			return err
		}
		return enc.Encode(pred)
	}

	results, err := svc.PredictBatch(ctx, profiles)
	if err != nil {
		return err
	}
	outs := make([]predictOutput, len(results))
	failed := 0
	for i, r := range results {
		outs[i].Index = i
		if r.Err != nil {
			outs[i].Error = r.Err.Error()
			outs[i].Kind = service.Kind(r.Err)
			failed++
			continue
		}
		outs[i].Prediction = r.Prediction
	}
	if err := enc.Encode(outs); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d predictions failed", failed, len(results))
	}
	return nil
}
