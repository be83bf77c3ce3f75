package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/salarycast/internal/domain/profile"
	"github.com/okian/salarycast/internal/domain/types"
	"github.com/okian/salarycast/pkg/logger"
)

// ErrUnexpected is returned when any response differs from what its case expects.
var ErrUnexpected = errors.New("unexpected responses")

const directoryPermission = 0o750

// reply decodes both a prediction and an error body.
type reply struct {
	Salary *float64 `json:"salary"`
	Code   string   `json:"code"`
}

// Run checks health, reads the catalog, then submits generated profiles
// singly and in batches and verifies every response.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	start := time.Now()
	cfg.Workers = max(cfg.Workers, 1)
	log := logger.Get().Named("loadtest")
	log.Info(ctx, "starting salarycast load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("profiles", cfg.NumProfiles),
		logger.Int("workers", cfg.Workers),
		logger.Int("batchSize", cfg.BatchSize),
		logger.String("timeout", cfg.Timeout.String()),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := checkServiceHealth(ctx, c); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	cat, err := fetchCatalog(ctx, c)
	if err != nil {
		return nil, err
	}

	cases := generateCases(ctx, cfg, cat)
	stats := &Stats{Generated: len(cases), MinSalary: math.Inf(1), MaxSalary: math.Inf(-1)}

	salaries := submitCases(ctx, cfg, c, cases, stats)
	if cfg.BatchSize > 0 {
		if err := submitBatches(ctx, cfg, c, cases, salaries, stats); err != nil {
			return stats, fmt.Errorf("batch submission failed: %w", err)
		}
	}

	if cfg.OutputFile != "" {
		if err := saveCases(cfg.OutputFile, cases); err != nil {
			log.Warn(ctx, "failed to save profiles to file", logger.Error(err))
		}
	}

	if stats.Succeeded == 0 {
		stats.MinSalary, stats.MaxSalary = 0, 0
	}
	stats.Duration = time.Since(start)
	displayFinalStats(ctx, log, stats)

	if stats.Unexpected > 0 || stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d single, %d batch", ErrUnexpected, stats.Unexpected, stats.Mismatched)
	}
	return stats, nil
}

// checkServiceHealth verifies the service has artifacts loaded.
func checkServiceHealth(ctx context.Context, c *client) error {
	status, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	return nil
}

// submitCases posts every case to /predict with a worker pool and returns
// the salary of each accepted case, NaN for the rest.
func submitCases(ctx context.Context, cfg *Config, c *client, cases []Case, stats *Stats) []float64 {
	log := logger.Get().Named("loadtest")
	salaries := make([]float64, len(cases))
	for i := range salaries {
		salaries[i] = math.NaN()
	}

	var (
		submitted  int64
		succeeded  int64
		rejected   int64
		unexpected int64
		mu         sync.Mutex
	)

	work := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				cs := cases[i]
				var r reply
				status, err := c.post(ctx, "/predict", cs.Profile, &r)
				atomic.AddInt64(&submitted, 1)

				ok := err == nil && status == cs.WantStatus
				switch {
				case ok && status == http.StatusOK:
					ok = r.Salary != nil && !math.IsNaN(*r.Salary) && !math.IsInf(*r.Salary, 0)
				case ok:
					ok = r.Code == cs.WantCode
				}
				if !ok {
					atomic.AddInt64(&unexpected, 1)
					if cfg.Verbose {
						log.Warn(ctx, "unexpected response",
							logger.Int("index", i),
							logger.Int("status", status),
							logger.Int("wantStatus", cs.WantStatus),
							logger.String("code", r.Code),
							logger.String("wantCode", cs.WantCode),
							logger.Any("profile", cs.Profile),
							logger.Error(err),
						)
					}
					continue
				}
				if status != http.StatusOK {
					atomic.AddInt64(&rejected, 1)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
				salaries[i] = *r.Salary
				mu.Lock()
				stats.MinSalary = math.Min(stats.MinSalary, *r.Salary)
				stats.MaxSalary = math.Max(stats.MaxSalary, *r.Salary)
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	stats.Submitted = int(submitted)
	stats.Succeeded = int(succeeded)
	stats.Rejected = int(rejected)
	stats.Unexpected = int(unexpected)
	return salaries
}

// submitBatches replays the cases through /predict/batch and checks each
// element against its case and the single-call salary.
func submitBatches(ctx context.Context, cfg *Config, c *client, cases []Case, salaries []float64, stats *Stats) error {
	type batchReply struct {
		Results []types.BatchItem `json:"results"`
	}

	var mismatched, items, batches int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for start := 0; start < len(cases); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(cases))
		g.Go(func() error {
			profiles := make([]profile.Profile, 0, end-start)
			for _, cs := range cases[start:end] {
				profiles = append(profiles, cs.Profile)
			}
			var r batchReply
			status, err := c.post(gctx, "/predict/batch", map[string]any{"profiles": profiles}, &r)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("batch at %d returned status %d", start, status)
			}
			if len(r.Results) != end-start {
				return fmt.Errorf("batch at %d returned %d results for %d profiles", start, len(r.Results), end-start)
			}
			atomic.AddInt64(&batches, 1)
			for k, item := range r.Results {
				atomic.AddInt64(&items, 1)
				if !batchItemMatches(cases[start+k], salaries[start+k], item) {
					atomic.AddInt64(&mismatched, 1)
				}
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Batches = int(batches)
	stats.BatchItems = int(items)
	stats.Mismatched = int(mismatched)
	return err
}

// batchItemMatches reports whether a batch element agrees with its case. An
// accepted element must reproduce the single-call salary exactly.
func batchItemMatches(cs Case, single float64, item types.BatchItem) bool {
	if cs.WantStatus != http.StatusOK {
		return item.Error != nil && item.Error.Code == cs.WantCode
	}
	if item.Prediction == nil {
		return false
	}
	return math.IsNaN(single) || item.Prediction.Salary == single
}

// saveCases writes the generated cases to filename as a JSON array.
func saveCases(filename string, cases []Case) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted+stats.BatchItems) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("unexpected", stats.Unexpected),
		logger.Int("batches", stats.Batches),
		logger.Int("batchItems", stats.BatchItems),
		logger.Int("batchMismatched", stats.Mismatched),
		logger.Float64("minSalary", stats.MinSalary),
		logger.Float64("maxSalary", stats.MaxSalary),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("profilesPerSecond", perSecond),
	)
}
