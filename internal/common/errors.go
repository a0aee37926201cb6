package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Common error types used across the pipeline
var (
	// ErrInvalidInput indicates an empty or unparseable URL supplied by the caller
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoURLs indicates a submission that contained no usable URL
	ErrNoURLs = errors.New("no URLs to evaluate")
	// ErrDNSFailure indicates the host does not exist
	ErrDNSFailure = errors.New("dns failure")
	// ErrNetworkTimeout indicates a network operation hit its deadline
	ErrNetworkTimeout = errors.New("network timeout")
	// ErrConnectionFailure indicates any other transport level failure
	ErrConnectionFailure = errors.New("connection failure")
	// ErrAPIAuthMissing indicates a scan submission was needed but no API key is configured
	ErrAPIAuthMissing = errors.New("api key missing")
	// ErrMalformedResponse indicates an unexpected payload from the scan service
	ErrMalformedResponse = errors.New("malformed response")
	// ErrResultNotReady indicates the scan result artifact does not exist yet
	ErrResultNotReady = errors.New("result not ready")
	// ErrPollExhausted indicates polling ran out of attempts without a ready result
	ErrPollExhausted = errors.New("poll attempts exhausted")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-related errors
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error for '%s': %s: %v", e.URL, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("network error for '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// HTTPError represents a response with an unexpected status code
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}

// ClassifyNetworkError maps a transport error chain onto one of
// ErrDNSFailure, ErrNetworkTimeout or ErrConnectionFailure.
// A nil error classifies as nil.
func ClassifyNetworkError(err error) error {
	if err == nil {
		return nil
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return ErrDNSFailure
	}
	if errors.Is(err, ErrDNSFailure) {
		return ErrDNSFailure
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrNetworkTimeout) {
		return ErrNetworkTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrNetworkTimeout
	}

	return ErrConnectionFailure
}

// CombineErrors combines multiple errors into a single error with formatted message
func CombineErrors(errs []error) error {
	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	switch len(messages) {
	case 0:
		return nil
	case 1:
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("multiple errors occurred: [%s]", strings.Join(messages, "; "))
}
