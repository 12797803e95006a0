// Package errors carries the pipeline error taxonomy and the API error
// responses of the web surface.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors of the pipeline taxonomy. Only these two abort a whole run;
// everything else degrades to a fallback artifact plus a log entry.
var (
	// ErrMissingInput marks a required raw input file that is absent.
	ErrMissingInput = errors.New("required input file missing")
	// ErrMissingPrecondition marks a pipeline stage started before the stage
	// it depends on produced its output.
	ErrMissingPrecondition = errors.New("pipeline precondition not met")
)

// IsFatal reports whether an error belongs to the run-aborting taxonomy.
func IsFatal(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrMissingPrecondition)
}

// MissingInput wraps a concrete missing-file condition.
func MissingInput(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMissingInput, path, err)
}

// MissingPrecondition wraps a concrete precondition failure.
func MissingPrecondition(detail string) error {
	return fmt.Errorf("%w: %s", ErrMissingPrecondition, detail)
}
