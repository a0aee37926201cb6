package httpclient

import (
	"time"

	"github.com/rs/zerolog"
)

// HTTPClientBuilder builds an HTTPClient. Components start from the shared
// application settings (WithConfig) and override what they need.
type HTTPClientBuilder struct {
	config      HTTPClientConfig
	retryConfig *RetryHandlerConfig
	logger      zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTPClientBuilder with default configuration
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithConfig replaces the whole configuration
func (b *HTTPClientBuilder) WithConfig(config HTTPClientConfig) *HTTPClientBuilder {
	b.config = config
	return b
}

// WithTimeout sets the request timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithFollowRedirects sets whether to follow redirects
func (b *HTTPClientBuilder) WithFollowRedirects(follow bool) *HTTPClientBuilder {
	b.config.FollowRedirects = follow
	return b
}

// WithMaxRedirects sets the maximum number of redirects to follow
func (b *HTTPClientBuilder) WithMaxRedirects(max int) *HTTPClientBuilder {
	b.config.MaxRedirects = max
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithMaxContentSize sets the maximum content size to fetch in bytes (0 for no limit)
func (b *HTTPClientBuilder) WithMaxContentSize(size int) *HTTPClientBuilder {
	b.config.MaxContentSize = size
	return b
}

// WithRetry enables retries on the given throttling status codes
func (b *HTTPClientBuilder) WithRetry(config RetryHandlerConfig) *HTTPClientBuilder {
	b.retryConfig = &config
	return b
}

// Build creates and returns a new HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	client, err := NewHTTPClient(b.config, b.logger)
	if err != nil {
		return nil, err
	}
	if b.retryConfig != nil {
		client.retryHandler = NewRetryHandler(*b.retryConfig, b.logger)
	}
	return client, nil
}
