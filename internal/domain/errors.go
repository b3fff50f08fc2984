package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrInvalidTarget indicates a malformed URL or incomplete discrete fields
	ErrInvalidTarget = errors.New("invalid target")

	// ErrDestinationRejected indicates the destination exists and is not an empty directory
	ErrDestinationRejected = errors.New("destination rejected")

	// ErrWorkspace indicates the scratch workspace could not be created or removed
	ErrWorkspace = errors.New("workspace error")

	// ErrPathNotFound indicates the requested subpath is absent after checkout
	ErrPathNotFound = errors.New("path not found in remote branch")

	// ErrNotDirectory indicates the requested subpath is a file, not a directory
	ErrNotDirectory = errors.New("path is not a directory")

	// ErrSymlinkCycle indicates a directory symlink that leads back to one of its ancestors
	ErrSymlinkCycle = errors.New("symlink cycle")

	// ErrSymlinkEscape indicates a symlink that resolves outside the fetched tree
	ErrSymlinkEscape = errors.New("symlink points outside the fetched tree")

	// ErrUnknownBackend indicates an unsupported fetch backend name
	ErrUnknownBackend = errors.New("unknown fetch backend")
)

// Exit codes returned by the command line
const (
	ExitOK                  = 0
	ExitFailure             = 1
	ExitInvalidTarget       = 2
	ExitDestinationRejected = 3
	ExitWorkspace           = 4
	ExitFetch               = 5
	ExitCopy                = 6
)

// FetchError represents a failed fetch step
type FetchError struct {
	Step       Step
	Diagnostic string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("fetch step %s failed: %v: %s", e.Step, e.Err, e.Diagnostic)
	}
	return fmt.Sprintf("fetch step %s failed: %v", e.Step, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(step Step, diagnostic string, err error) *FetchError {
	return &FetchError{
		Step:       step,
		Diagnostic: diagnostic,
		Err:        err,
	}
}

// CopyError represents an I/O failure while copying into the destination
type CopyError struct {
	Path string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy failed at %s: %v", e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// NewCopyError creates a new CopyError
func NewCopyError(path string, err error) *CopyError {
	return &CopyError{
		Path: path,
		Err:  err,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidTarget for every field-level failure.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidTarget
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ExitCode maps a pipeline error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var fetchErr *FetchError
	var copyErr *CopyError
	switch {
	case errors.Is(err, ErrInvalidTarget):
		return ExitInvalidTarget
	case errors.Is(err, ErrDestinationRejected):
		return ExitDestinationRejected
	case errors.Is(err, ErrWorkspace):
		return ExitWorkspace
	case errors.As(err, &fetchErr):
		return ExitFetch
	case errors.As(err, &copyErr):
		return ExitCopy
	default:
		return ExitFailure
	}
}
