package labels

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNamer = display.English.Regions()

// CountryName returns the English name of an ISO-3166 alpha-2 code. Codes
// that do not parse, including the Unknown placeholder, are returned as-is.
func CountryName(code string) string {
	if len(code) != 2 {
		return code
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return code
	}
	if name := regionNamer.Name(region); name != "" {
		return name
	}
	return code
}

// Countries builds a code↔name table over codes, typically a location
// codec's classes. Names that would collide fall back to the code.
func Countries(feature string, codes []string) Table {
	entries := make([]Entry, 0, len(codes))
	used := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		name := CountryName(code)
		if _, dup := used[name]; dup {
			name = code
		}
		used[name] = struct{}{}
		entries = append(entries, Entry{Code: code, Label: name})
	}
	return NewTable(feature, entries...)
}

// ResolveCountry maps a country name or alpha-2 code to a code. Names are
// looked up in table; a syntactically valid alpha-2 country code outside the
// table is normalized and returned so the codec can report it precisely.
func ResolveCountry(table Table, value string) (string, error) {
	if code, err := table.Resolve(value); err == nil {
		return code, nil
	}
	v := strings.TrimSpace(value)
	if len(v) == 2 {
		if region, err := language.ParseRegion(v); err == nil && region.IsCountry() {
			return region.String(), nil
		}
	}
	return "", &UnresolvableLabelError{Feature: table.Feature(), Value: value, Valid: table.Labels()}
}
