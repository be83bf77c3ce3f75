package dataset_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/salarycast/internal/adapters/dataset"
	domain "github.com/okian/salarycast/internal/domain/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a CSV with a BOM and a ragged row", t, func() {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(
			" job_title ,salary_in_usd\nData Scientist,120000\nML Engineer\n")...)

		Convey("When it is parsed", func() {
			tbl, err := dataset.ParseCSV(ctx, data)

			Convey("Then headers are clean and the short row is padded with a warning", func() {
				So(err, ShouldBeNil)
				So(tbl.Headers, ShouldResemble, []string{"job_title", "salary_in_usd"})
				So(tbl.Len(), ShouldEqual, 2)
				So(tbl.Rows[1], ShouldResemble, []string{"ML Engineer", ""})
				So(tbl.Warnings, ShouldHaveLength, 1)
				So(tbl.Warnings[0].Row, ShouldEqual, 3)
			})
		})
	})

	Convey("Given Latin-1 bytes", t, func() {
		data := []byte("city,salary\nZ\xfcrich,1\n")

		Convey("Then they are decoded to UTF-8", func() {
			tbl, err := dataset.ParseCSV(ctx, data)
			So(err, ShouldBeNil)
			So(tbl.Rows[0][0], ShouldEqual, "Zürich")
		})
	})

	Convey("Given a header without rows", t, func() {
		_, err := dataset.ParseCSV(ctx, []byte("a,b\n"))
		So(errors.Is(err, domain.ErrEmptyTable), ShouldBeTrue)
	})

	Convey("Given an empty file", t, func() {
		_, err := dataset.ParseCSV(ctx, nil)
		So(errors.Is(err, domain.ErrEmptyTable), ShouldBeTrue)
	})
}

func TestCSVSource(t *testing.T) {
	Convey("Given a CSV file on disk", t, func() {
		path := filepath.Join(t.TempDir(), "salaries.csv")
		So(os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600), ShouldBeNil)

		Convey("When opened by extension", func() {
			src, err := dataset.Open(path, "ignored")
			So(err, ShouldBeNil)
			tbl, err := src.Load(context.Background())

			Convey("Then the rows are loaded", func() {
				So(err, ShouldBeNil)
				So(tbl.Rows, ShouldResemble, [][]string{{"1", "2"}})
			})
		})

		Convey("When the file is missing", func() {
			_, err := dataset.NewCSV(path + ".missing").Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSQLiteSource(t *testing.T) {
	Convey("Given a SQLite database with a salaries table", t, func() {
		path := filepath.Join(t.TempDir(), "salaries.db")
		db, err := sql.Open("sqlite", path)
		So(err, ShouldBeNil)
		_, err = db.Exec(`CREATE TABLE salaries (job_title TEXT, salary_in_usd INTEGER, remote_ratio INTEGER)`)
		So(err, ShouldBeNil)
		_, err = db.Exec(`INSERT INTO salaries VALUES ('Data Scientist', 120000, 100), (NULL, 90000, 0)`)
		So(err, ShouldBeNil)
		So(db.Close(), ShouldBeNil)

		Convey("When the table is loaded", func() {
			src, err := dataset.Open(path, "salaries")
			So(err, ShouldBeNil)
			tbl, err := src.Load(context.Background())

			Convey("Then values arrive as text with NULL as empty", func() {
				So(err, ShouldBeNil)
				So(tbl.Headers, ShouldResemble, []string{"job_title", "salary_in_usd", "remote_ratio"})
				So(tbl.Rows, ShouldResemble, [][]string{
					{"Data Scientist", "120000", "100"},
					{"", "90000", "0"},
				})
				So(tbl.IsNumeric("salary_in_usd"), ShouldBeTrue)
			})
		})

		Convey("When the table name is not an identifier", func() {
			_, err := dataset.NewSQLite(path, "salaries; DROP TABLE salaries")

			Convey("Then it is refused", func() {
				So(errors.Is(err, dataset.ErrInvalidTableName), ShouldBeTrue)
			})
		})

		Convey("When the table does not exist", func() {
			src, _ := dataset.NewSQLite(path, "missing")
			_, err := src.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
