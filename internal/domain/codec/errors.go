package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for category codecs.
var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrOutOfRange      = errors.New("code out of range")
	ErrDuplicateClass  = errors.New("duplicate class")
	ErrEmptyClasses    = errors.New("codec has no classes")
)

// UnknownCategoryError reports a raw value outside a codec's trained domain.
type UnknownCategoryError struct {
	Feature string
	Value   string
	Valid   []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for %s; valid: [%s]", e.Value, e.Feature, strings.Join(e.Valid, ", "))
}

// Unwrap exposes ErrUnknownCategory to errors.Is.
func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }
