package helm

import (
	"errors"
	"strings"

	"github.com/storeforge/storeforge/pkg/client/netretry"
)

// FailureClass partitions driver failures for retry decisions.
type FailureClass string

const (
	// Transient failures are safe to retry: tool timeouts, release lock
	// conflicts, flaky chart repositories.
	Transient FailureClass = "transient"
	// Permanent failures will not succeed on retry: bad input, missing
	// charts, malformed values.
	Permanent FailureClass = "permanent"
)

// ClassifiedError wraps a driver failure with its retry class.
type ClassifiedError struct {
	Class FailureClass
	Err   error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	return string(e.Class) + ": " + e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// permanentPatterns are substrings that identify non-retryable Helm errors.
var permanentPatterns = []string{
	"chart not found",
	"no chart version found",
	"failed to load chart",
	"unable to parse",
	"validation failed",
	"is invalid",
	"cannot re-use a name that is still in use",
	"name is required",
}

// Classify wraps err in a ClassifiedError. Already classified errors pass
// through unchanged; permanent patterns win over the transient heuristics.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	errMsg := err.Error()
	for _, pattern := range permanentPatterns {
		if strings.Contains(errMsg, pattern) {
			return &ClassifiedError{Class: Permanent, Err: err}
		}
	}

	if netretry.IsRetryable(err) {
		return &ClassifiedError{Class: Transient, Err: err}
	}

	return &ClassifiedError{Class: Permanent, Err: err}
}

// IsTransient reports whether err carries the Transient class.
func IsTransient(err error) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Class == Transient
	}

	return false
}
