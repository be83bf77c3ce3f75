package cli_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/okian/salarycast/internal/cli"
	"github.com/okian/salarycast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

// writeDataset writes a small salaries CSV and returns its path.
func writeDataset(t *testing.T, n int) string {
	levels := []string{"EN", "MI", "SE", "EX"}
	roles := []string{"Data Scientist", "ML Engineer", "Data Analyst"}
	countries := []string{"US", "DE", "GB", "US", "IN"}
	sizes := []string{"S", "M", "L"}
	remotes := []int{0, 50, 100}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"work_year", "experience_level", "employment_type", "job_title",
		"salary_in_usd", "employee_residence", "remote_ratio", "company_location", "company_size"})
	for i := 0; i < n; i++ {
		lvl := i % 4
		usd := 40000 + 35000*lvl + 100*remotes[i%3] + 1000*(i%7)
		_ = w.Write([]string{
			strconv.Itoa(2020 + i%4), levels[lvl], "FT", roles[i%3], strconv.Itoa(usd),
			countries[i%5], strconv.Itoa(remotes[i%3]), countries[(i+1)%5], sizes[(i/3)%3],
		})
	}
	w.Flush()

	path := filepath.Join(t.TempDir(), "ds_salaries.csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (string, error) {
	root := cli.NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

var canonicalArgs = []string{
	"predict",
	"--set", "job_role=Data Scientist",
	"--set", "experience_level=Senior-level",
	"--set", "employment_type=FT",
	"--set", "company_size=M",
	"--set", "company_location=United States",
	"--set", "employee_residence=US",
	"--set", "remote_ratio=Fully remote (100%)",
	"--set", "work_year=2023",
}

func TestRootCmd(t *testing.T) {
	Convey("Given the root command", t, func() {
		root := cli.NewRootCmd("1.2.3")

		Convey("Then every subcommand is registered", func() {
			var names []string
			for _, c := range root.Commands() {
				names = append(names, c.Name())
			}
			So(names, ShouldContain, "serve")
			So(names, ShouldContain, "encoders")
			So(names, ShouldContain, "train")
			So(names, ShouldContain, "predict")
			So(names, ShouldContain, "inspect")
			So(names, ShouldContain, "loadtest")
			So(root.Version, ShouldEqual, "1.2.3")
			So(root.PersistentFlags().Lookup("config"), ShouldNotBeNil)
		})
	})
}

func TestCommands(t *testing.T) {
	Convey("Given an empty artifact directory and a dataset", t, func() {
		dir := filepath.Join(t.TempDir(), "artifacts")
		t.Setenv("SALARYCAST_ARTIFACT_DIR", dir)
		t.Setenv("SALARYCAST_LOG_LEVEL", "error")
		data := writeDataset(t, 60)

		Convey("When predicting before training", func() {
			_, err := run(canonicalArgs...)

			Convey("Then the missing artifacts are reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "missing artifacts")
			})
		})

		Convey("When only encoders are generated", func() {
			out, err := run("encoders", "--data", data)

			Convey("Then encoders and mappings are written without a model", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "experience_level")
				_, statErr := os.Stat(filepath.Join(dir, "encoders.json"))
				So(statErr, ShouldBeNil)
				_, statErr = os.Stat(filepath.Join(dir, "model.json"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})

			Convey("And inspect recommends training", func() {
				out, err := run("inspect")
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "salarycast train")
			})
		})

		Convey("When a model is trained", func() {
			out, err := run("train", "--data", data)
			So(err, ShouldBeNil)

			var report struct {
				Model      string   `yaml:"model"`
				Target     string   `yaml:"target"`
				Features   []string `yaml:"features"`
				Candidates []struct {
					Name string `yaml:"name"`
				} `yaml:"candidates"`
			}
			So(yaml.Unmarshal([]byte(out), &report), ShouldBeNil)

			Convey("Then the report names the winner and its features", func() {
				So(report.Target, ShouldEqual, "salary_in_usd")
				So(report.Features, ShouldHaveLength, 8)
				So(report.Candidates, ShouldHaveLength, 4)
				So(report.Model, ShouldNotBeEmpty)
			})

			Convey("Then a profile given as labels predicts a salary", func() {
				out, err := run(canonicalArgs...)
				So(err, ShouldBeNil)
				var pred types.Prediction
				So(json.Unmarshal([]byte(out), &pred), ShouldBeNil)
				So(pred.Salary, ShouldBeGreaterThan, 0)
				So(pred.Currency, ShouldEqual, "USD")
				So(pred.ModelName, ShouldEqual, report.Model)
			})

			Convey("Then an unseen country fails with the valid list", func() {
				args := append([]string{}, canonicalArgs...)
				args = append(args, "--set", "company_location=FR")
				_, err := run(args...)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "FR")
			})

			Convey("Then regenerating only the encoders keeps the old model from loading", func() {
				_, err := run("encoders", "--data", data)
				So(err, ShouldBeNil)
				_, err = run(canonicalArgs...)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "different training runs")

				out, err := run("inspect")
				So(err, ShouldBeNil)
				var r struct {
					Fixes []string `yaml:"recommendations"`
				}
				So(yaml.Unmarshal([]byte(out), &r), ShouldBeNil)
				So(r.Fixes, ShouldContain, "artifacts come from different training runs; run: salarycast train --data <dataset>")
			})

			Convey("Then inspect checks the dataset columns", func() {
				out, err := run("inspect", "--data", data)
				So(err, ShouldBeNil)

				var r struct {
					Artifacts map[string]bool `yaml:"artifacts"`
					Dataset   struct {
						Checks []struct {
							Feature string `yaml:"feature"`
							Found   bool   `yaml:"found"`
						} `yaml:"checks"`
					} `yaml:"dataset"`
					Problems []string `yaml:"problems"`
				}
				So(yaml.Unmarshal([]byte(out), &r), ShouldBeNil)
				So(r.Artifacts["model"], ShouldBeTrue)
				So(r.Dataset.Checks, ShouldHaveLength, 8)
				for _, c := range r.Dataset.Checks {
					So(c.Found, ShouldBeTrue)
				}
				So(r.Problems, ShouldBeEmpty)
			})
		})
	})
}

func TestPredictInput(t *testing.T) {
	Convey("Given the predict command", t, func() {
		t.Setenv("SALARYCAST_ARTIFACT_DIR", filepath.Join(t.TempDir(), "artifacts"))

		Convey("When no profile is given", func() {
			_, err := run("predict")

			Convey("Then it asks for one", func() {
				So(err, ShouldEqual, cli.ErrNoProfile)
			})
		})

		Convey("When the JSON file is malformed", func() {
			path := filepath.Join(t.TempDir(), "bad.json")
			So(os.WriteFile(path, []byte(`{"job_role": {}}`), 0o644), ShouldBeNil)
			_, err := run("predict", "--json", path)

			Convey("Then decoding fails before artifacts are read", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "decode profile")
			})
		})
	})
}
