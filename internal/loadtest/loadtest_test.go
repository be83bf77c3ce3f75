package loadtest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/salarycast/internal/adapters/http/api"
	"github.com/okian/salarycast/internal/adapters/repository"
	service "github.com/okian/salarycast/internal/app"
	"github.com/okian/salarycast/internal/domain/artifact"
	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/columns"
	"github.com/okian/salarycast/internal/domain/model"
	"github.com/okian/salarycast/internal/loadtest"
	"github.com/okian/salarycast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithFormat("text", nil); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

var featureNames = []string{
	"job_role", "experience_level", "employment_type", "company_size",
	"company_location", "employee_residence", "remote_ratio", "work_year",
}

func fixtureBundle() *artifact.Bundle {
	return &artifact.Bundle{
		Model: &model.Linear{Intercept: 20000, Coef: []float64{1000, 10000, 100, 500, 200, 300, 10, 1}},
		Codecs: codec.Set{
			"job_role":           codec.New("job_role", []string{"Data Scientist", "ML Engineer", "Data Analyst"}),
			"experience_level":   codec.New("experience_level", []string{"EN", "MI", "SE", "EX"}),
			"employment_type":    codec.New("employment_type", []string{"FT", "PT", "CT", "FL"}),
			"company_size":       codec.New("company_size", []string{"S", "M", "L"}),
			"company_location":   codec.New("company_location", []string{"US", "DE", "GB"}),
			"employee_residence": codec.New("employee_residence", []string{"US", "DE", "GB", ""}),
		},
		Columns: columns.Build(columns.DefaultAliases(), featureNames, featureNames[:6]),
		Info:    model.Info{ModelName: "linear", FeatureNames: featureNames, TargetName: "salary_in_usd"},
	}
}

func newServer(t *testing.T, load bool) *httptest.Server {
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "artifacts"))
	svc := service.New(store, service.WithLogger(logger.Discard()), service.WithMaxBatchSize(10))
	if load {
		if err := repository.SaveBundle(context.Background(), store, fixtureBundle()); err != nil {
			t.Fatal(err)
		}
		if err := svc.Load(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running service with artifacts", t, func() {
		srv := newServer(t, true)
		out := filepath.Join(t.TempDir(), "out", "profiles.json")
		cfg := &loadtest.Config{
			BaseURL:      srv.URL,
			NumProfiles:  40,
			InvalidRatio: 0.3,
			BatchSize:    10,
			Workers:      4,
			Timeout:      5 * time.Second,
			Seed:         7,
			OutputFile:   out,
		}

		Convey("When the load test runs", func() {
			stats, err := loadtest.Run(context.Background(), cfg)

			Convey("Then every response matches its case", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 40)
				So(stats.Submitted, ShouldEqual, 40)
				So(stats.Unexpected, ShouldEqual, 0)
				So(stats.Succeeded+stats.Rejected, ShouldEqual, 40)
				So(stats.Succeeded, ShouldBeGreaterThan, 0)
				So(stats.Batches, ShouldEqual, 4)
				So(stats.BatchItems, ShouldEqual, 40)
				So(stats.Mismatched, ShouldEqual, 0)
				So(stats.MinSalary, ShouldBeGreaterThanOrEqualTo, 20000)
			})

			Convey("Then the generated cases are saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var cases []loadtest.Case
				So(json.Unmarshal(data, &cases), ShouldBeNil)
				So(cases, ShouldHaveLength, 40)
			})
		})

		Convey("When batches exceed the service limit", func() {
			cfg.BatchSize = 20
			_, err := loadtest.Run(context.Background(), cfg)

			Convey("Then the run fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "413")
			})
		})
	})

	Convey("Given a service without artifacts", t, func() {
		srv := newServer(t, false)
		_, err := loadtest.Run(context.Background(), &loadtest.Config{
			BaseURL: srv.URL, NumProfiles: 1, Workers: 1, Timeout: time.Second,
		})

		Convey("Then the health check stops the run", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
