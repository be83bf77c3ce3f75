package labels

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvableLabel marks a display label with no reverse mapping.
var ErrUnresolvableLabel = errors.New("unresolvable label")

// UnresolvableLabelError carries the offending field and the labels it accepts.
type UnresolvableLabelError struct {
	Feature string
	Value   string
	Valid   []string
}

func (e *UnresolvableLabelError) Error() string {
	return fmt.Sprintf("unresolvable label %q for %s; valid: [%s]", e.Value, e.Feature, strings.Join(e.Valid, ", "))
}

// Unwrap exposes ErrUnresolvableLabel to errors.Is.
func (e *UnresolvableLabelError) Unwrap() error { return ErrUnresolvableLabel }
