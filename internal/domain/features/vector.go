// Package features assembles the ordered numeric vector a regressor consumes.
package features

import (
	"math"
	"slices"
	"strconv"

	"github.com/okian/salarycast/internal/domain/codec"
)

// Lookup supplies raw values by logical feature name.
type Lookup interface {
	Value(name string) (string, bool)
}

// Vector is the model input in feature order.
type Vector struct {
	Names  []string
	Values []float64
	// Filled lists the names that were defaulted to 0 because nothing
	// supplied them.
	Filled []string
}

// Len returns the number of slots.
func (v Vector) Len() int { return len(v.Values) }

// Build encodes values into a vector ordered by featureNames.
//
// Every codec-covered value present in values is encoded first, in
// featureNames order and then codec name order, and the first unknown
// category aborts the build. A codec-covered name that values does not
// supply encodes as codec.Unknown when the codec knows that class. Names
// without a codec are parsed as floats. Anything left is filled with 0.
func Build(values Lookup, codecs codec.Set, featureNames []string) (Vector, error) {
	encoded := make(map[string]float64, len(codecs))
	for _, name := range encodeOrder(codecs, featureNames) {
		c := codecs[name]
		raw, ok := values.Value(name)
		if !ok {
			if !c.Contains(codec.Unknown) {
				continue
			}
			raw = codec.Unknown
		}
		code, err := c.Encode(raw)
		if err != nil {
			return Vector{}, err
		}
		encoded[name] = float64(code)
	}

	vec := Vector{
		Names:  slices.Clone(featureNames),
		Values: make([]float64, len(featureNames)),
	}
	for i, name := range featureNames {
		if x, ok := encoded[name]; ok {
			vec.Values[i] = x
			continue
		}
		if _, covered := codecs[name]; !covered {
			if raw, ok := values.Value(name); ok {
				x, err := strconv.ParseFloat(raw, 64)
				if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
					return Vector{}, &TypeMismatchError{Feature: name, Value: raw}
				}
				vec.Values[i] = x
				continue
			}
		}
		vec.Filled = append(vec.Filled, name)
	}
	return vec, nil
}

func encodeOrder(codecs codec.Set, featureNames []string) []string {
	order := make([]string, 0, len(codecs))
	seen := make(map[string]struct{}, len(codecs))
	for _, name := range featureNames {
		if _, ok := codecs[name]; ok {
			order = append(order, name)
			seen[name] = struct{}{}
		}
	}
	for _, name := range codecs.Features() {
		if _, ok := seen[name]; !ok {
			order = append(order, name)
		}
	}
	return order
}
