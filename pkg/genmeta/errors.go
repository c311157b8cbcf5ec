package genmeta

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of an extraction.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	rec, err := svc.Extract(req)
//	if errors.Is(err, genmeta.ErrNotFound) {
//	    // nothing to read
//	}
var (
	// ErrNotFound indicates no image or metadata source could be located.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedFormat indicates a file extension or metadata encoding
	// that is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrWrite indicates the report could not be persisted.
	ErrWrite = errors.New("write failed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SourceError describes a failure to locate or read a metadata source.
// It carries the offending path and an actionable hint for the user.
type SourceError struct {
	Path    string // Path involved in the failure (may be empty)
	Message string // Primary error message
	Hint    string // Actionable suggestion for fixing
	Err     error  // Sentinel or underlying cause
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	var msg string
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	} else {
		msg = e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	return msg
}

// Unwrap exposes the sentinel so errors.Is works through SourceError.
func (e *SourceError) Unwrap() error { return e.Err }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitUnsupportedFormat
	case errors.Is(err, ErrWrite):
		return ExitWriteError
	}

	// cobra reports usage problems as plain errors
	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}
