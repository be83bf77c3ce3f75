// Package columns binds logical feature names to the source columns of an
// arbitrary training table.
package columns

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Registry is the resolved logical→source column binding. It is built once
// during training and read-only afterwards.
type Registry struct {
	// Mappings binds logical feature names to source column names.
	Mappings map[string]string `json:"mappings"`
	// Reverse binds source column names back to logical names.
	Reverse map[string]string `json:"reverse_mappings"`
	// Order lists logical names in resolution order.
	Order []string `json:"order"`
	// Fallback is true when no alias matched and categorical columns were
	// bound to themselves under normalized names.
	Fallback bool `json:"fallback"`
	// RunID names the training run that built the registry.
	RunID string `json:"run_id,omitempty"`
}

// Resolve returns the first candidate present in available.
func Resolve(_ string, candidates []string, available []string) (string, bool) {
	present := make(map[string]struct{}, len(available))
	for _, a := range available {
		present[a] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := present[c]; ok {
			return c, true
		}
	}
	return "", false
}

// Build resolves every alias entry against available. When nothing matches it
// falls back to an identity mapping over the categorical columns, keyed by
// their normalized names, and marks the registry as Fallback.
func Build(aliases []Alias, available []string, categorical []string) Registry {
	reg := Registry{
		Mappings: make(map[string]string),
		Reverse:  make(map[string]string),
	}

	for _, a := range aliases {
		if _, dup := reg.Mappings[a.Logical]; dup {
			continue
		}
		actual, ok := Resolve(a.Logical, a.Candidates, available)
		if !ok {
			continue
		}
		// A source column feeds at most one logical feature.
		if _, taken := reg.Reverse[actual]; taken {
			continue
		}
		reg.bind(a.Logical, actual)
	}

	if len(reg.Mappings) > 0 {
		return reg
	}

	reg.Fallback = true
	for _, col := range categorical {
		logical := NormalizeName(col)
		if logical == "" {
			continue
		}
		if _, dup := reg.Mappings[logical]; dup {
			continue
		}
		reg.bind(logical, col)
	}
	return reg
}

func (r *Registry) bind(logical, actual string) {
	r.Mappings[logical] = actual
	r.Reverse[actual] = logical
	r.Order = append(r.Order, logical)
}

// Actual returns the source column bound to logical.
func (r Registry) Actual(logical string) (string, bool) {
	a, ok := r.Mappings[logical]
	return a, ok
}

// Logical returns the logical name bound to a source column.
func (r Registry) Logical(actual string) (string, bool) {
	l, ok := r.Reverse[actual]
	return l, ok
}

// Has reports whether logical is bound.
func (r Registry) Has(logical string) bool {
	_, ok := r.Mappings[logical]
	return ok
}

// Len returns the number of bound logical features.
func (r Registry) Len() int { return len(r.Mappings) }

// Names returns bound logical names in resolution order. Registries decoded
// without an order fall back to sorted names.
func (r Registry) Names() []string {
	if len(r.Order) == len(r.Mappings) {
		return slices.Clone(r.Order)
	}
	return slices.Sorted(maps.Keys(r.Mappings))
}

// NormalizeName lowercases name, strips diacritics and collapses runs of
// whitespace, '-' and '_' into a single '_'.
func NormalizeName(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSep := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(r)
	}
	return b.String()
}
