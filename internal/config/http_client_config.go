package config

import "time"

// HTTPClientConfig holds the transport settings shared by every outbound client
type HTTPClientConfig struct {
	UserAgent           string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty" validate:"required"`
	Proxy               string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	InsecureSkipVerify  bool              `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	EnableHTTP2         bool              `json:"enable_http2" yaml:"enable_http2"`
	MaxIdleConns        int               `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty" validate:"min=0"`
	MaxIdleConnsPerHost int               `json:"max_idle_conns_per_host,omitempty" yaml:"max_idle_conns_per_host,omitempty" validate:"min=0"`
	DialTimeoutSecs     int               `json:"dial_timeout_secs,omitempty" yaml:"dial_timeout_secs,omitempty" validate:"min=0"`
	CustomHeaders       map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		UserAgent:           DefaultUserAgent,
		EnableHTTP2:         true,
		MaxIdleConns:        DefaultHTTPMaxIdleConns,
		MaxIdleConnsPerHost: DefaultHTTPMaxIdleConnsPerHost,
		DialTimeoutSecs:     DefaultHTTPDialTimeoutSecs,
	}
}

// DialTimeout returns the connection dial timeout
func (c HTTPClientConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSecs) * time.Second
}
