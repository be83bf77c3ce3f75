package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/salarycast/internal/domain/artifact"
)

// Sentinel kinds for artifact store errors.
var (
	ErrMissingArtifact = errors.New("missing artifact")
	ErrCorruptArtifact = errors.New("corrupt artifact")
	ErrRunMismatch     = errors.New("artifacts come from different training runs")
)

// MissingArtifactError lists every artifact absent from a store.
type MissingArtifactError struct {
	Location string
	Names    []string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("missing artifacts in %s: %s", e.Location, strings.Join(e.Names, ", "))
}

// Unwrap exposes ErrMissingArtifact to errors.Is.
func (e *MissingArtifactError) Unwrap() error { return ErrMissingArtifact }

// RunMismatchError reports the training run recorded in each artifact when
// they disagree.
type RunMismatchError struct {
	Runs map[string]string
}

func (e *RunMismatchError) Error() string {
	parts := make([]string, 0, len(e.Runs))
	for _, name := range artifact.Names {
		if run, ok := e.Runs[name]; ok {
			if run == "" {
				run = "<none>"
			}
			parts = append(parts, name+"="+run)
		}
	}
	return fmt.Sprintf("%v: %s", ErrRunMismatch, strings.Join(parts, ", "))
}

// Unwrap exposes ErrRunMismatch to errors.Is.
func (e *RunMismatchError) Unwrap() error { return ErrRunMismatch }
