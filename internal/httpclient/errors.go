package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error is a failed request. It unwraps to the transport cause so callers
// can classify it with errors.Is and errors.As.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit a deadline.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

func newError(op, url string, err error) error {
	return &Error{Op: op, URL: url, Err: err}
}

// StatusError is returned when a retryable status persisted through every attempt.
type StatusError struct {
	StatusCode int
	Attempts   int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d from %s after %d attempt(s)", e.StatusCode, e.URL, e.Attempts)
}
