// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Artifact store kinds.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ArtifactStore selects where the trained artifacts live: file or redis.
	ArtifactStore string `koanf:"artifact_store"`

	// ArtifactDir is the directory holding the four artifact files.
	ArtifactDir string `koanf:"artifact_dir"`

	// RedisAddr, RedisDB, RedisPassword and RedisPrefix configure the redis
	// artifact store.
	RedisAddr     string `koanf:"redis_addr"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPassword string `koanf:"redis_password"`
	RedisPrefix   string `koanf:"redis_prefix"`

	// ReloadIntervalSec polls the artifact store for a newer bundle. 0 disables polling.
	ReloadIntervalSec int `koanf:"reload_interval"`

	// DatasetPath points at the training dataset (CSV file or SQLite database).
	DatasetPath string `koanf:"dataset_path"`

	// DatasetTable names the table to read when DatasetPath is a SQLite database.
	DatasetTable string `koanf:"dataset_table"`

	// TargetColumn overrides target detection during training.
	TargetColumn string `koanf:"target_column"`

	// TestFraction is the held-out share used to select the best regressor.
	TestFraction float64 `koanf:"test_fraction"`

	// Seed makes the train/test split reproducible.
	Seed int64 `koanf:"seed"`

	// MaxBatchSize caps POST /predict/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// BatchConcurrency bounds concurrent predictions inside one batch.
	BatchConcurrency int `koanf:"batch_concurrency"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ArtifactStore:     StoreFile,
		ArtifactDir:       "artifacts",
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		RedisPrefix:       "salarycast",
		ReloadIntervalSec: 0,
		DatasetPath:       "data.csv",
		DatasetTable:      "salaries",
		TestFraction:      0.2,
		Seed:              42,
		MaxBatchSize:      100,
		BatchConcurrency:  runtime.NumCPU(),
	}
}

// ReloadInterval returns the polling interval as a duration.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalSec) * time.Second
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ArtifactStore != StoreFile && c.ArtifactStore != StoreRedis:
		return fmt.Errorf("%w: artifact_store must be %q or %q, got %q", ErrInvalidConfig, StoreFile, StoreRedis, c.ArtifactStore)
	case c.ArtifactStore == StoreFile && strings.TrimSpace(c.ArtifactDir) == "":
		return fmt.Errorf("%w: artifact_dir must not be empty", ErrInvalidConfig)
	case c.ArtifactStore == StoreRedis && strings.TrimSpace(c.RedisAddr) == "":
		return fmt.Errorf("%w: redis_addr must not be empty", ErrInvalidConfig)
	case c.TestFraction <= 0 || c.TestFraction >= 1:
		return fmt.Errorf("%w: test_fraction must be in (0, 1), got %v", ErrInvalidConfig, c.TestFraction)
	case c.ReloadIntervalSec < 0:
		return fmt.Errorf("%w: reload_interval must not be negative", ErrInvalidConfig)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive", ErrInvalidConfig)
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("%w: batch_concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
