package httpclient

import (
	"time"

	"github.com/aleister1102/scamsiren/internal/config"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout, 0 means none
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL (HTTP/SOCKS)
	CustomHeaders         map[string]string // Custom headers to add to all requests
	UserAgent             string            // User-Agent header
	MaxContentSize        int               // Maximum body bytes read, 0 means unlimited
	MaxIdleConns          int               // Maximum idle connections
	MaxIdleConnsPerHost   int               // Maximum idle connections per host
	MaxConnsPerHost       int               // Maximum connections per host
	IdleConnTimeout       time.Duration     // Idle connection timeout
	TLSHandshakeTimeout   time.Duration     // TLS handshake timeout
	ExpectContinueTimeout time.Duration     // Expect 100-continue timeout
	DialTimeout           time.Duration     // Connection dial timeout
	KeepAlive             time.Duration     // Keep-alive duration
	EnableHTTP2           bool              // Enable HTTP/2 support
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             config.DefaultUserAgent,
		MaxIdleConns:          config.DefaultHTTPMaxIdleConns,
		MaxIdleConnsPerHost:   config.DefaultHTTPMaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
	}
}

// ConfigFromApp converts the application's transport settings into a client config
func ConfigFromApp(app config.HTTPClientConfig) HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.UserAgent = app.UserAgent
	cfg.Proxy = app.Proxy
	cfg.InsecureSkipVerify = app.InsecureSkipVerify
	cfg.EnableHTTP2 = app.EnableHTTP2
	if app.MaxIdleConns > 0 {
		cfg.MaxIdleConns = app.MaxIdleConns
	}
	if app.MaxIdleConnsPerHost > 0 {
		cfg.MaxIdleConnsPerHost = app.MaxIdleConnsPerHost
	}
	if app.DialTimeoutSecs > 0 {
		cfg.DialTimeout = app.DialTimeout()
	}
	if len(app.CustomHeaders) > 0 {
		cfg.CustomHeaders = make(map[string]string, len(app.CustomHeaders))
		for k, v := range app.CustomHeaders {
			cfg.CustomHeaders[k] = v
		}
	}
	return cfg
}
