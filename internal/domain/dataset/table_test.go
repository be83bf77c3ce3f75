package dataset_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/salarycast/internal/domain/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a small salary table", t, func() {
		tbl := dataset.NewTable(
			[]string{"job_title", "salary_in_usd", "remote_ratio"},
			[][]string{
				{"Data Scientist", "120000", "100"},
				{"ML Engineer", "150,000", ""},
				{"", "90000", "50"},
				{"Data Scientist"},
			},
		)

		Convey("Then short rows are padded", func() {
			So(tbl.Len(), ShouldEqual, 4)
			So(tbl.Rows[3], ShouldResemble, []string{"Data Scientist", "", ""})
		})

		Convey("Then distinct values are sorted and keep blanks", func() {
			d, err := tbl.Distinct("job_title")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, []string{"", "Data Scientist", "ML Engineer"})
		})

		Convey("Then numeric columns parse with NaN for blanks", func() {
			v, err := tbl.Numeric("salary_in_usd")
			So(err, ShouldBeNil)
			So(v[:3], ShouldResemble, []float64{120000, 150000, 90000})
			So(math.IsNaN(v[3]), ShouldBeTrue)
		})

		Convey("Then columns are classified", func() {
			So(tbl.IsNumeric("remote_ratio"), ShouldBeTrue)
			So(tbl.IsNumeric("job_title"), ShouldBeFalse)
			So(tbl.Categorical(), ShouldResemble, []string{"job_title"})
		})

		Convey("Then unknown columns are reported", func() {
			_, err := tbl.Column("nope")
			So(errors.Is(err, dataset.ErrColumnNotFound), ShouldBeTrue)
			So(tbl.IsNumeric("nope"), ShouldBeFalse)
		})
	})
}
