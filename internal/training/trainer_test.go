package training_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/okian/salarycast/internal/domain/codec"
	"github.com/okian/salarycast/internal/domain/dataset"
	"github.com/okian/salarycast/internal/domain/model"
	"github.com/okian/salarycast/internal/training"
	"github.com/okian/salarycast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var salaryHeaders = []string{
	"work_year", "experience_level", "employment_type", "job_title", "salary",
	"salary_currency", "salary_in_usd", "employee_residence", "remote_ratio",
	"company_location", "company_size",
}

// salaryTable builds a deterministic table shaped like the public data
// science salaries dataset.
func salaryTable(n int) *dataset.Table {
	levels := []string{"EN", "MI", "SE", "EX"}
	types := []string{"FT", "FT", "FT", "CT"}
	roles := []string{"Data Scientist", "ML Engineer", "Data Analyst"}
	countries := []string{"US", "DE", "GB", "US", "IN"}
	sizes := []string{"S", "M", "L"}
	remotes := []int{0, 50, 100}

	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		lvl := i % 4
		usd := 40000 + 35000*lvl + 100*remotes[i%3] + 1000*(i%7)
		rows = append(rows, []string{
			strconv.Itoa(2020 + i%4),
			levels[lvl],
			types[(i/4)%4],
			roles[i%3],
			strconv.Itoa(usd),
			"USD",
			strconv.Itoa(usd),
			countries[i%5],
			strconv.Itoa(remotes[i%3]),
			countries[(i+1)%5],
			sizes[(i/3)%3],
		})
	}
	return dataset.NewTable(salaryHeaders, rows)
}

var wantFeatures = []string{
	"job_role", "company_size", "employment_type", "experience_level",
	"remote_ratio", "company_location", "employee_residence", "work_year",
}

func newTrainer(opts ...training.Option) *training.Trainer {
	return training.New(append([]training.Option{training.WithLogger(logger.Discard())}, opts...)...)
}

func TestGenerateEncoders(t *testing.T) {
	ctx := context.Background()

	Convey("Given a salaries table", t, func() {
		tbl := salaryTable(40)
		tbl.Rows[5][7] = ""

		Convey("When encoders are generated", func() {
			enc, err := newTrainer().GenerateEncoders(ctx, tbl)

			Convey("Then curated features are bound and only categorical ones get codecs", func() {
				So(err, ShouldBeNil)
				So(enc.Columns.Fallback, ShouldBeFalse)
				So(enc.Columns.Names(), ShouldResemble, wantFeatures)
				So(enc.Columns.Mappings["job_role"], ShouldEqual, "job_title")
				So(enc.Codecs.Features(), ShouldResemble, []string{
					"company_location", "company_size", "employee_residence",
					"employment_type", "experience_level", "job_role",
				})
				So(enc.Numeric, ShouldResemble, []string{"remote_ratio", "work_year"})
			})

			Convey("Then classes are sorted and blanks become Unknown", func() {
				So(enc.Codecs["experience_level"].Classes(), ShouldResemble, []string{"EN", "EX", "MI", "SE"})
				So(enc.Codecs["employee_residence"].Classes(), ShouldResemble, []string{"DE", "GB", "IN", "US", "Unknown"})
			})

			Convey("Then salary columns never become features", func() {
				for _, name := range enc.Columns.Names() {
					So(training.SalaryLike(name), ShouldBeFalse)
				}
			})
		})
	})

	Convey("Given a table with unanticipated headers", t, func() {
		tbl := dataset.NewTable([]string{"Favourite Colour", "Salary"}, [][]string{
			{"red", "10"}, {"blue", "20"}, {"red", "30"},
		})

		Convey("When encoders are generated", func() {
			enc, err := newTrainer().GenerateEncoders(ctx, tbl)

			Convey("Then the identity fallback is used and flagged", func() {
				So(err, ShouldBeNil)
				So(enc.Columns.Fallback, ShouldBeTrue)
				So(enc.Columns.Mappings, ShouldResemble, map[string]string{"favourite_colour": "Favourite Colour"})
				So(enc.Codecs["favourite_colour"].Classes(), ShouldResemble, []string{"blue", "red"})
			})
		})
	})

	Convey("Given a table with only salary columns", t, func() {
		tbl := dataset.NewTable([]string{"salary"}, [][]string{{"1"}})

		Convey("Then no features resolve", func() {
			_, err := newTrainer().GenerateEncoders(ctx, tbl)
			So(errors.Is(err, training.ErrNoFeatures), ShouldBeTrue)
		})
	})
}

func TestTrain(t *testing.T) {
	ctx := context.Background()

	Convey("Given a salaries table", t, func() {
		tbl := salaryTable(120)

		Convey("When a model is trained", func() {
			res, err := newTrainer().Train(ctx, tbl)

			Convey("Then a valid bundle with the contract metadata is produced", func() {
				So(err, ShouldBeNil)
				So(res.Bundle.Validate(), ShouldBeNil)
				So(res.Bundle.Info.TargetName, ShouldEqual, "salary_in_usd")
				So(res.Bundle.Info.FeatureNames, ShouldResemble, wantFeatures)
				So(res.Bundle.Info.Rows, ShouldEqual, 120)
				So(res.Bundle.Model.Dims(), ShouldEqual, 8)
				So(res.TrainRows+res.TestRows, ShouldEqual, 120)
				So(res.TestRows, ShouldEqual, 24)
				So(res.Candidates, ShouldHaveLength, 4)
				So(res.Bundle.Info.Scores, ShouldHaveLength, 4)
			})

			Convey("Then the run id is stamped on the model info and column mappings", func() {
				So(res.Bundle.Info.RunID, ShouldEqual, res.RunID.String())
				So(res.Bundle.Columns.RunID, ShouldEqual, res.RunID.String())
			})

			Convey("Then the winner has the best held-out score", func() {
				winner := res.Bundle.Info.ModelName
				for _, c := range res.Candidates {
					So(res.Bundle.Info.Scores[winner], ShouldBeGreaterThanOrEqualTo, c.R2)
				}
				So(res.Bundle.Info.Scores[winner], ShouldBeGreaterThan, 0.5)
				So(winner, ShouldNotEqual, model.KindMean)
			})

			Convey("Then retraining with the same seed picks the same model", func() {
				again, err := newTrainer().Train(ctx, tbl)
				So(err, ShouldBeNil)
				So(again.Bundle.Info.ModelName, ShouldEqual, res.Bundle.Info.ModelName)
				So(again.Bundle.Info.Scores, ShouldResemble, res.Bundle.Info.Scores)
			})
		})

		Convey("When some rows lack numeric values", func() {
			tbl.Rows[0][6] = ""
			tbl.Rows[1][8] = ""
			tbl.Rows[2][3] = ""

			res, err := newTrainer().Train(ctx, tbl)

			Convey("Then those rows are dropped and blank categories kept as Unknown", func() {
				So(err, ShouldBeNil)
				So(res.Dropped, ShouldEqual, 2)
				So(res.Bundle.Info.Rows, ShouldEqual, 118)
				So(res.Bundle.Codecs["job_role"].Contains(codec.Unknown), ShouldBeTrue)
			})
		})
	})

	Convey("Given a table whose salary column has another name", t, func() {
		tbl := dataset.NewTable(
			[]string{"experience_level", "Salary (USD)"},
			[][]string{{"EN", "10"}, {"SE", "30"}, {"EN", "11"}, {"SE", "29"}, {"MI", "20"}},
		)

		Convey("Then the first salary-like numeric column is the target", func() {
			res, err := newTrainer().Train(ctx, tbl)
			So(err, ShouldBeNil)
			So(res.Bundle.Info.TargetName, ShouldEqual, "Salary (USD)")
			So(res.Bundle.Info.FeatureNames, ShouldResemble, []string{"experience_level"})
		})
	})

	Convey("Given a configured target that is not numeric", t, func() {
		_, err := newTrainer(training.WithTargetColumn("job_title")).Train(ctx, salaryTable(10))
		So(errors.Is(err, training.ErrNoTarget), ShouldBeTrue)
	})

	Convey("Given a table without a salary column", t, func() {
		tbl := dataset.NewTable([]string{"experience_level", "pay"}, [][]string{{"EN", "1"}})
		_, err := newTrainer().Train(ctx, tbl)
		So(errors.Is(err, training.ErrNoTarget), ShouldBeTrue)
	})

	Convey("Given too few rows", t, func() {
		_, err := newTrainer().Train(ctx, salaryTable(2))
		So(errors.Is(err, training.ErrTooFewRows), ShouldBeTrue)
	})
}
