package httpclient

import (
	"context"
	"io"
	"net/textproto"
)

// HTTPRequest represents an HTTP request
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    io.Reader
	Context context.Context
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	// FinalURL is the URL of the last request made, after any followed redirects
	FinalURL  string
	Truncated bool
}

// Header returns the first value of a response header, matched case-insensitively
func (r *HTTPResponse) Header(name string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// IsRedirect reports whether the status is a 3xx
func (r *HTTPResponse) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsSuccess reports whether the status is a 2xx
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
