package config

import "time"

// RetryConfig defines configuration for scan API request retries
type RetryConfig struct {
	// Maximum number of retry attempts for retryable status codes
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"min=0,max=10"`
	// Base delay in milliseconds for exponential backoff
	BaseDelayMillis int `json:"base_delay_millis,omitempty" yaml:"base_delay_millis,omitempty" validate:"min=0,max=300000"`
	// Maximum delay in milliseconds for exponential backoff
	MaxDelayMillis int `json:"max_delay_millis,omitempty" yaml:"max_delay_millis,omitempty" validate:"min=0,max=3600000"`
	// Enable jitter to randomize delays slightly
	EnableJitter bool `json:"enable_jitter" yaml:"enable_jitter"`
	// HTTP status codes that should trigger retries (default: [429, 503])
	RetryStatusCodes []int `json:"retry_status_codes,omitempty" yaml:"retry_status_codes,omitempty" validate:"dive,min=400,max=599"`
}

// NewDefaultRetryConfig creates default retry configuration
func NewDefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:       2,
		BaseDelayMillis:  2000,
		MaxDelayMillis:   10000,
		EnableJitter:     true,
		RetryStatusCodes: []int{429, 503},
	}
}

// BaseDelay returns the base backoff delay
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMillis) * time.Millisecond
}

// MaxDelay returns the backoff cap
func (c RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMillis) * time.Millisecond
}
