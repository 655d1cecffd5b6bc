// Package domain defines the core domain models for sumconf.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes follow the SC-<AREA>-<NNNN> format.
type DomainError struct {
	Code    string // Error code (e.g., "SC-LOAD-4040")
	Message string // Human-readable message
	Details string // Optional additional details, usually a path or name
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return ErrParse.Code
	}
	return ""
}

// ============================================================================
// Application name errors (NAME)
// ============================================================================

var (
	// ErrInvalidAppName indicates the application name contains control,
	// unassigned or path-hostile punctuation characters.
	ErrInvalidAppName = NewDomainError("SC-NAME-4000", "invalid appName")

	// ErrSuspectAppName is a warning: the name is usable but contains
	// characters outside letters, digits, '-' and '_'.
	ErrSuspectAppName = NewDomainError("SC-NAME-2000", "application name may cause issues")
)

// ============================================================================
// Loading errors (LOAD)
// ============================================================================

var (
	// ErrNoLoaderForFile indicates no loader is registered for the file's
	// base name or extension.
	ErrNoLoaderForFile = NewDomainError("SC-LOAD-4040", "invalid file, no loader")

	// ErrEmptyFile indicates a zero-length config file when empty files are
	// treated as errors.
	ErrEmptyFile = NewDomainError("SC-LOAD-4001", "empty file")

	// ErrInvalidFragmentShape indicates a loaded value that is not an object
	// (or a deferred producer of one) where one is required.
	ErrInvalidFragmentShape = NewDomainError("SC-LOAD-4002", "invalid fragment, expected object")

	// ErrParse indicates malformed structured data. Concrete failures are
	// reported as *ParseError, which matches ErrParse with errors.Is.
	ErrParse = NewDomainError("SC-LOAD-4003", "parse error")
)

// ============================================================================
// Merge errors (MERG)
// ============================================================================

var (
	// ErrPropagatedFailure wraps an error value found inside a fragment.
	// It aborts the whole gather.
	ErrPropagatedFailure = NewDomainError("SC-MERG-5000", "failure value in configuration")

	// ErrInvalidState indicates a fragment record was merged below the top level.
	ErrInvalidState = NewDomainError("SC-MERG-5001", "invalid state")
)

// ============================================================================
// CLI errors (CLI)
// ============================================================================

var (
	// ErrFilesRequired indicates --reset-file-names was given without --files.
	ErrFilesRequired = NewDomainError("SC-CLI-4000", "must specify -f/--files if you reset file names with -R")
)

// ParseError reports malformed content in a configuration file.
// Line and Column are 1-based; zero means unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s: line %d, column %d in %s", e.Msg, e.Line, e.Column, e.Path)
	case e.Line > 0:
		return fmt.Sprintf("%s: line %d in %s", e.Msg, e.Line, e.Path)
	default:
		return fmt.Sprintf("%s in %s", e.Msg, e.Path)
	}
}

// Unwrap returns the parser's original error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == ErrParse.Code
}
