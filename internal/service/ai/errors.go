package ai

import (
	"errors"
	"fmt"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrEmptyReply      = errors.New("model returned no message")
	ErrPanic           = errors.New("panic during model call")
)

// InitializationError records why the pipeline could not be constructed.
// A pipeline holding one stays degraded for the rest of the process.
type InitializationError struct {
	Cause error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("pipeline initialization failed: %v", e.Cause)
}

func (e *InitializationError) Unwrap() error { return e.Cause }

// RequestError records a failed exchange on an otherwise healthy pipeline.
type RequestError struct {
	SessionID string
	Cause     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed for session %q: %v", e.SessionID, e.Cause)
}

func (e *RequestError) Unwrap() error { return e.Cause }
