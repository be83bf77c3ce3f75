// Package codec maps raw categorical values to dense integer codes and back.
//
// A Codec is built once from the values observed in the training dataset and
// is immutable afterwards. Serving code must restore codecs from their
// persisted class lists; re-deriving them from data would silently shift codes
// away from what the model was fitted on.
package codec

import (
	"fmt"
	"slices"
	"sort"
)

// Unknown is the placeholder class that replaces missing training values.
const Unknown = "Unknown"

// Codec is a bijection between a sorted class list and 0..len(classes)-1.
type Codec struct {
	feature string
	classes []string
	index   map[string]int
}

// New builds a codec from observed training values. Empty values become
// Unknown; the remaining distinct values are sorted byte-wise.
func New(feature string, observed []string) *Codec {
	seen := make(map[string]struct{}, len(observed))
	classes := make([]string, 0, len(observed))
	for _, v := range observed {
		if v == "" {
			v = Unknown
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return newCodec(feature, classes)
}

// FromClasses restores a codec from a persisted class list. The order is
// taken verbatim; duplicates and empty lists are rejected.
func FromClasses(feature string, classes []string) (*Codec, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%s: %w", feature, ErrEmptyClasses)
	}
	seen := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%s: %w %q", feature, ErrDuplicateClass, c)
		}
		seen[c] = struct{}{}
	}
	return newCodec(feature, slices.Clone(classes)), nil
}

func newCodec(feature string, classes []string) *Codec {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &Codec{feature: feature, classes: classes, index: index}
}

// Feature returns the logical feature this codec encodes.
func (c *Codec) Feature() string { return c.feature }

// Len returns the number of classes.
func (c *Codec) Len() int { return len(c.classes) }

// Classes returns a copy of the ordered class list.
func (c *Codec) Classes() []string { return slices.Clone(c.classes) }

// Contains reports whether raw is part of the trained domain.
func (c *Codec) Contains(raw string) bool {
	_, ok := c.index[raw]
	return ok
}

// Encode returns the code for raw, or an *UnknownCategoryError.
func (c *Codec) Encode(raw string) (int, error) {
	code, ok := c.index[raw]
	if !ok {
		return 0, &UnknownCategoryError{Feature: c.feature, Value: raw, Valid: c.Classes()}
	}
	return code, nil
}

// Decode returns the raw value for code.
func (c *Codec) Decode(code int) (string, error) {
	if code < 0 || code >= len(c.classes) {
		return "", fmt.Errorf("%s: %w: %d not in [0, %d)", c.feature, ErrOutOfRange, code, len(c.classes))
	}
	return c.classes[code], nil
}
