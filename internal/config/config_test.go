package config_test

import (
	"errors"
	"testing"

	"github.com/okian/salarycast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.ArtifactStore, convey.ShouldEqual, config.StoreFile)
			convey.So(cfg.ArtifactDir, convey.ShouldEqual, "artifacts")
			convey.So(cfg.TestFraction, convey.ShouldEqual, 0.2)
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.ReloadInterval(), convey.ShouldEqual, 0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs violating constraints", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"unknown store":     func(c *config.Config) { c.ArtifactStore = "s3" },
			"empty dir":         func(c *config.Config) { c.ArtifactDir = "" },
			"empty redis addr":  func(c *config.Config) { c.ArtifactStore = config.StoreRedis; c.RedisAddr = "" },
			"fraction too high": func(c *config.Config) { c.TestFraction = 1 },
			"negative reload":   func(c *config.Config) { c.ReloadIntervalSec = -1 },
			"zero batch":        func(c *config.Config) { c.MaxBatchSize = 0 },
			"zero concurrency":  func(c *config.Config) { c.BatchConcurrency = 0 },
		}

		for _, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})
}
