package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Messages are matched by MapError, keep them in sync with
// errorPatterns.
var (
	ErrEmptyInput     = errors.New("empty file")
	ErrMissingHeader  = errors.New("blank header row")
	ErrFileTooLarge   = errors.New("file too large")
	ErrEncoding       = errors.New("encoding error")
	ErrUnknownKind    = errors.New("unknown entity kind")
	ErrInvalidMapping = errors.New("invalid mapping")
	ErrNotFound       = errors.New("record not found")
	ErrTooManyRuns    = errors.New("too many concurrent imports")
)

// ParseError reports a file the reader could not turn into rows. It is the
// only error that aborts a run.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a parent reference that could be neither found nor
// created.
type ResolutionError struct {
	Kind EntityKind
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure returned by a RecordStore implementation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
