// Package labels translates between human display labels and the raw codes
// the model was trained on.
package labels

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/salarycast/internal/domain/columns"
)

// Entry pairs a raw code with its display label.
type Entry struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Table is an ordered, fixed code↔label translation for one feature.
type Table struct {
	feature string
	entries []Entry
}

// NewTable builds a table for feature from entries in display order.
func NewTable(feature string, entries ...Entry) Table {
	return Table{feature: feature, entries: slices.Clone(entries)}
}

// Feature returns the logical feature the table translates.
func (t Table) Feature() string { return t.feature }

// Entries returns a copy of the table.
func (t Table) Entries() []Entry { return slices.Clone(t.entries) }

// Codes returns the raw codes in display order.
func (t Table) Codes() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Code
	}
	return out
}

// Labels returns the display labels in display order.
func (t Table) Labels() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Label
	}
	return out
}

// Label returns the display label for code, or code itself when unmapped.
func (t Table) Label(code string) string {
	for _, e := range t.entries {
		if e.Code == code {
			return e.Label
		}
	}
	return code
}

// Resolve maps a display label to its code. A value that already is one of
// the table's codes resolves to itself, numeric codes in any float spelling
// ("100.0", "1e2"). Anything else is unresolvable.
func (t Table) Resolve(value string) (string, error) {
	v := strings.TrimSpace(value)
	for _, e := range t.entries {
		if e.Label == v {
			return e.Code, nil
		}
	}
	canon := canonicalNumber(v)
	for _, e := range t.entries {
		if e.Code == v || (canon != "" && e.Code == canon) {
			return e.Code, nil
		}
	}
	return "", &UnresolvableLabelError{Feature: t.feature, Value: value, Valid: t.Labels()}
}

// canonicalNumber returns v's shortest decimal form, or "" when v is not a
// finite number.
func canonicalNumber(v string) string {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var (
	experienceLevels = NewTable(columns.ExperienceLevel,
		Entry{"EN", "Entry-level"},
		Entry{"MI", "Mid-level"},
		Entry{"SE", "Senior-level"},
		Entry{"EX", "Executive-level"},
	)
	employmentTypes = NewTable(columns.EmploymentType,
		Entry{"FT", "Full-time"},
		Entry{"PT", "Part-time"},
		Entry{"CT", "Contract"},
		Entry{"FL", "Freelance"},
	)
	companySizes = NewTable(columns.CompanySize,
		Entry{"S", "Small (1-50 employees)"},
		Entry{"M", "Medium (50-250 employees)"},
		Entry{"L", "Large (250+ employees)"},
	)
	remoteRatios = NewTable(columns.RemoteRatio,
		Entry{"0", "No remote (0%)"},
		Entry{"50", "Hybrid (50% remote)"},
		Entry{"100", "Fully remote (100%)"},
	)
)

// ExperienceLevels returns the experience level table.
func ExperienceLevels() Table { return experienceLevels }

// EmploymentTypes returns the employment type table.
func EmploymentTypes() Table { return employmentTypes }

// CompanySizes returns the company size table.
func CompanySizes() Table { return companySizes }

// RemoteRatios returns the remote ratio table.
func RemoteRatios() Table { return remoteRatios }

// For returns the fixed table for feature, if one exists.
func For(feature string) (Table, bool) {
	switch feature {
	case columns.ExperienceLevel:
		return experienceLevels, true
	case columns.EmploymentType:
		return employmentTypes, true
	case columns.CompanySize:
		return companySizes, true
	case columns.RemoteRatio:
		return remoteRatios, true
	default:
		return Table{}, false
	}
}

// IsCountryFeature reports whether feature holds ISO-3166 alpha-2 codes.
func IsCountryFeature(feature string) bool {
	return feature == columns.CompanyLocation || feature == columns.EmployeeResidence
}
