package warehouse

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind string

// Error kinds. Connection, read and write errors abort the run; validation
// and reference errors only skip the offending row.
const (
	KindConnection Kind = "connection" // a store could not be opened
	KindRead       Kind = "read"       // a source table could not be read
	KindValidation Kind = "validation" // a source value is malformed
	KindWrite      Kind = "write"      // a target insert failed
	KindReference  Kind = "reference"  // a row points at a missing parent
)

// Sentinels for errors.Is matching by kind.
var (
	ErrConnection = errors.New("store unreachable")
	ErrRead       = errors.New("source read failed")
	ErrValidation = errors.New("invalid value")
	ErrWrite      = errors.New("target write failed")
	ErrReference  = errors.New("unresolved reference")
)

// Error is the error type raised by stores and transforms.
type Error struct {
	Kind Kind
	// Op names the table or value involved, e.g. "orders" or "dim_customer".
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Op)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindConnection:
		return target == ErrConnection
	case KindRead:
		return target == ErrRead
	case KindValidation:
		return target == ErrValidation
	case KindWrite:
		return target == ErrWrite
	case KindReference:
		return target == ErrReference
	}
	return false
}

// NewConnectionError wraps a failure to reach a store.
func NewConnectionError(op string, err error) *Error {
	return &Error{Kind: KindConnection, Op: op, Err: err}
}

// NewReadError wraps a failed source read.
func NewReadError(table string, err error) *Error {
	return &Error{Kind: KindRead, Op: table, Err: err}
}

// NewValidationError reports a malformed value.
func NewValidationError(value string, err error) *Error {
	return &Error{Kind: KindValidation, Op: fmt.Sprintf("%q", value), Err: err}
}

// NewWriteError wraps a failed insert.
func NewWriteError(table string, err error) *Error {
	return &Error{Kind: KindWrite, Op: table, Err: err}
}

// StageError carries the pipeline stage that aborted a run.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
