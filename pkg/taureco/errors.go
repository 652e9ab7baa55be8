package taureco

import (
	"errors"
	"fmt"
)

// Sentinel errors for event processing.
var (
	// ErrMissingDependency indicates a required collaborator, record or
	// upstream product could not be obtained.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrNilContext indicates ProcessEvent() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrUnknownBuilder indicates a builder variant name is not registered.
	ErrUnknownBuilder = errors.New("unknown builder")
)

// MissingDependencyError reports which dependency was unavailable.
// It matches ErrMissingDependency with errors.Is.
type MissingDependencyError struct {
	// Dependency names what was needed ("builder", "event", "tag_infos",
	// "vertices", or a setup record name).
	Dependency string
	// Label is the product label or record key, when there is one.
	Label string
	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	msg := "missing dependency " + e.Dependency
	if e.Label != "" {
		msg += fmt.Sprintf(" (%s)", e.Label)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrMissingDependency as a match.
func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// Unwrap returns the underlying cause.
func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}

// StageError wraps an error with the stage that produced it.
type StageError struct {
	// EventID is the event being processed.
	EventID string
	// Stage is the stage name ("vertex", "candidates").
	Stage string
	// Err is the underlying error from the stage.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("event %s: stage %s: %v", e.EventID, e.Stage, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a stage, typically by a builder.
type PanicError struct {
	// Stage is the stage that panicked.
	Stage string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// CancellationError reports that the context ended before a stage ran.
type CancellationError struct {
	// EventID is the event being processed.
	EventID string
	// Stage is the stage that was about to run.
	Stage string
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("event %s cancelled before stage %s: %v", e.EventID, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// StoreError wraps a failure to hand products off to the store.
type StoreError struct {
	// EventID is the event whose products could not be stored.
	EventID string
	// Op is the operation that failed ("marshal", "save").
	Op string
	// Attempts is how many saves were tried.
	Attempts int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("store %s for event %s after %d attempts: %v", e.Op, e.EventID, e.Attempts, e.Err)
	}
	return fmt.Sprintf("store %s for event %s: %v", e.Op, e.EventID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
