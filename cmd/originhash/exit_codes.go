package main

import (
	"context"
	"errors"

	"originhash/internal/origin"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
	exitFormat   = 4
	exitIO       = 5
	exitEmpty    = 6
	exitCanceled = 130
)

// errReported marks a failure whose details were already written to the
// user, so main only needs to set the exit status.
var errReported = errors.New("one or more sources failed")

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	return usageError{err: err}
}

// reportedError keeps the underlying cause for exit-code selection.
type reportedError struct {
	cause error
}

func (e reportedError) Error() string   { return errReported.Error() }
func (e reportedError) Unwrap() []error { return []error{errReported, e.cause} }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var usage usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	if errors.Is(err, context.Canceled) {
		return exitCanceled
	}
	switch origin.Kind(err) {
	case origin.ErrNotFound:
		return exitNotFound
	case origin.ErrFormat:
		return exitFormat
	case origin.ErrIO:
		return exitIO
	case origin.ErrEmptySource:
		return exitEmpty
	}
	return exitFailure
}
