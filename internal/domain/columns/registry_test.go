package columns_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/salarycast/internal/domain/columns"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given alias candidates in priority order", t, func() {
		candidates := []string{"Job Role", "job_role", "Job Title", "job_title"}

		Convey("When several candidates are available", func() {
			actual, ok := columns.Resolve(columns.JobRole, candidates, []string{"job_title", "job_role", "salary"})

			Convey("Then the highest priority one wins", func() {
				So(ok, ShouldBeTrue)
				So(actual, ShouldEqual, "job_role")
			})
		})

		Convey("When none is available", func() {
			_, ok := columns.Resolve(columns.JobRole, candidates, []string{"salary"})

			Convey("Then nothing resolves", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given the kaggle salaries header", t, func() {
		available := []string{
			"work_year", "experience_level", "employment_type", "job_title", "salary",
			"salary_currency", "salary_in_usd", "employee_residence", "remote_ratio",
			"company_location", "company_size",
		}
		reg := columns.Build(columns.DefaultAliases(), available, nil)

		Convey("Then curated logical features bind to their columns", func() {
			So(reg.Fallback, ShouldBeFalse)
			actual, ok := reg.Actual(columns.JobRole)
			So(ok, ShouldBeTrue)
			So(actual, ShouldEqual, "job_title")
			logical, ok := reg.Logical("job_title")
			So(ok, ShouldBeTrue)
			So(logical, ShouldEqual, columns.JobRole)
			So(reg.Has(columns.Education), ShouldBeFalse)
			So(reg.Len(), ShouldEqual, 8)
		})

		Convey("Then names follow alias order", func() {
			So(reg.Names(), ShouldResemble, []string{
				columns.JobRole, columns.CompanySize, columns.EmploymentType, columns.ExperienceLevel,
				columns.RemoteRatio, columns.CompanyLocation, columns.EmployeeResidence, columns.WorkYear,
			})
		})

		Convey("Then the registry survives a JSON round trip", func() {
			data, err := json.Marshal(reg)
			So(err, ShouldBeNil)
			var back columns.Registry
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back.Names(), ShouldResemble, reg.Names())
			So(back.Mappings, ShouldResemble, reg.Mappings)
		})
	})

	Convey("Given two logical features competing for one column", t, func() {
		aliases := []columns.Alias{
			{Logical: columns.Location, Candidates: []string{"Country"}},
			{Logical: columns.CompanyLocation, Candidates: []string{"Country"}},
		}
		reg := columns.Build(aliases, []string{"Country"}, nil)

		Convey("Then the first logical feature keeps it", func() {
			So(reg.Mappings, ShouldResemble, map[string]string{columns.Location: "Country"})
		})
	})

	Convey("Given a table with an unanticipated schema", t, func() {
		available := []string{"Seniority Band", "Team-Name", "Pay"}
		reg := columns.Build(columns.DefaultAliases(), available, []string{"Seniority Band", "Team-Name"})

		Convey("Then categorical columns bind to themselves under normalized names", func() {
			So(reg.Fallback, ShouldBeTrue)
			So(reg.Mappings, ShouldResemble, map[string]string{
				"seniority_band": "Seniority Band",
				"team_name":      "Team-Name",
			})
			So(reg.Names(), ShouldResemble, []string{"seniority_band", "team_name"})
		})
	})
}

func TestNormalizeName(t *testing.T) {
	Convey("Given column names with mixed separators and accents", t, func() {
		So(columns.NormalizeName("Job Role"), ShouldEqual, "job_role")
		So(columns.NormalizeName("  Niveau  d'Expérience "), ShouldEqual, "niveau_d'experience")
		So(columns.NormalizeName("company__size--band"), ShouldEqual, "company_size_band")
		So(columns.NormalizeName("_lead_"), ShouldEqual, "lead")
		So(columns.Known(columns.WorkYear), ShouldBeTrue)
		So(columns.Known("team_name"), ShouldBeFalse)
	})
}
