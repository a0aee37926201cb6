package httpclient

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler retries requests answered with a throttling status. The wait
// before each retry honors Retry-After when the server sends one and
// otherwise doubles from BaseDelay, never exceeding MaxDelay.
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]struct{}
	logger           zerolog.Logger
}

// RetryHandlerConfig configures a RetryHandler.
type RetryHandlerConfig struct {
	MaxRetries       int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	EnableJitter     bool
	RetryStatusCodes []int
}

// NewRetryHandler creates a RetryHandler.
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	codes := make(map[int]struct{}, len(config.RetryStatusCodes))
	for _, code := range config.RetryStatusCodes {
		codes[code] = struct{}{}
	}

	return &RetryHandler{
		maxRetries:       max(config.MaxRetries, 0),
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: codes,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

func (rh *RetryHandler) retryable(statusCode int) bool {
	_, ok := rh.retryStatusCodes[statusCode]
	return ok
}

// CalculateDelay returns the backoff before retry number attempt+1.
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if rh.maxDelay > 0 && delay >= rh.maxDelay {
			delay = rh.maxDelay
			break
		}
	}

	if rh.enableJitter {
		if spread := int64(delay / 10); spread > 0 {
			delay += time.Duration(rand.Int63n(spread))
		}
	}
	return delay
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
// It reports false when the header is absent or unusable.
func retryAfter(resp *HTTPResponse, now time.Time) (time.Duration, bool) {
	value := strings.TrimSpace(resp.Header("Retry-After"))
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	if at, err := http.ParseTime(value); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}

func (rh *RetryHandler) delayFor(attempt int, resp *HTTPResponse) time.Duration {
	if d, ok := retryAfter(resp, time.Now()); ok {
		if rh.maxDelay > 0 && d > rh.maxDelay {
			return rh.maxDelay
		}
		return d
	}
	return rh.CalculateDelay(attempt)
}

func (rh *RetryHandler) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry runs doFunc until it gets a non-retryable answer or runs out
// of retries. Transport errors are returned at once. A throttling status
// that outlives every retry is returned together with a *StatusError.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*HTTPRequest) (*HTTPResponse, error), req *HTTPRequest) (*HTTPResponse, error) {
	var resp *HTTPResponse
	attempts := 0

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		resp, err = doFunc(req)
		attempts++
		if err != nil {
			return nil, err
		}
		if !rh.retryable(resp.StatusCode) || attempt == rh.maxRetries {
			break
		}

		delay := rh.delayFor(attempt, resp)
		rh.logger.Warn().
			Str("url", req.URL).
			Int("status_code", resp.StatusCode).
			Int("attempt", attempt+1).
			Int("max_retries", rh.maxRetries).
			Dur("delay", delay).
			Msg("Retryable status, waiting before retry")

		if err := rh.wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	if rh.retryable(resp.StatusCode) {
		return resp, &StatusError{
			StatusCode: resp.StatusCode,
			Attempts:   attempts,
			URL:        req.URL,
			Body:       string(resp.Body),
		}
	}
	return resp, nil
}
