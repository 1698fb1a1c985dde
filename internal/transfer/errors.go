package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected means the storage answered with a status that is not worth
	// retrying (typically 4xx: expired or invalid upload URL).
	ErrRejected = errors.New("upload rejected")

	// ErrRetriesExhausted means every allowed attempt failed transiently.
	ErrRetriesExhausted = errors.New("upload retries exhausted")

	// ErrStalled is the cause attached to an attempt that saw no progress
	// for StallTimeout.
	ErrStalled = errors.New("upload stalled")

	// ErrSource means the local file could not be read.
	ErrSource = errors.New("source file unreadable")
)

// Error is the one failure a Transfer call returns, after any retries.
type Error struct {
	Kind       error // ErrRejected, ErrRetriesExhausted, ErrSource or the context error
	Attempts   int
	StatusCode int // last HTTP status seen, 0 if none
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v after %d attempt(s)", e.Kind, e.Attempts)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(", last status %d", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// statusError is the outcome of one attempt that got an unwanted status.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
