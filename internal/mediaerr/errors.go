// Package mediaerr defines the error taxonomy shared across the playback
// engine: sentinel errors comparable with errors.Is, and carrier types for
// errors that need attached detail.
package mediaerr

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when a stream exceeds its decode-retry budget.
	ErrDecode = errors.New("decode error: retry budget exceeded")

	// ErrAudioDevice covers host audio device init/start/volume failures.
	ErrAudioDevice = errors.New("audio device error")

	// ErrEmptyPalette is a programming-contract violation: nearest-color
	// lookup against a palette with no entries.
	ErrEmptyPalette = errors.New("palette is empty")

	// ErrInvalidRange is a programming-contract violation: an argument
	// fell outside its documented legal range.
	ErrInvalidRange = errors.New("value out of range")

	// ErrInvalidArgument is a programming-contract violation: a caller
	// passed a structurally invalid argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrShutdownRequested is the sentinel cooperative-cancellation
	// signal propagated to workers observing in_use==false.
	ErrShutdownRequested = errors.New("shutdown requested")
)

// ExternalLibError wraps any failure surfaced by the demux/decode/resample/
// rescale backend. Code is the backend's own status code where one exists
// (0 when the backend has no numeric code).
type ExternalLibError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExternalLibError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("external lib error (code %d): %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("external lib error (code %d): %s", e.Code, e.Message)
}

func (e *ExternalLibError) Unwrap() error {
	return e.Err
}

// NewExternalLibError constructs an ExternalLibError wrapping err.
func NewExternalLibError(code int, message string, err error) *ExternalLibError {
	return &ExternalLibError{Code: code, Message: message, Err: err}
}

// IoError wraps an underlying I/O failure (file not found, permission
// denied, device I/O) with the path that triggered it.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error on %q: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// NewIoError constructs an IoError.
func NewIoError(path string, err error) *IoError {
	return &IoError{Path: path, Err: err}
}
