package features

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned when a numeric feature value cannot be coerced.
var ErrTypeMismatch = errors.New("type mismatch")

// TypeMismatchError names the field and the value that was not numeric.
type TypeMismatchError struct {
	Feature string
	Value   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: %q is not a finite number", e.Feature, e.Value)
}

// Unwrap exposes ErrTypeMismatch to errors.Is.
func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
