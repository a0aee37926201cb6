package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(codes ...int) RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		EnableJitter:     true,
		RetryStatusCodes: codes,
	}
}

func TestRetryHandler_RecoversFromRateLimit(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"url":"https://example.com"}`, string(body), "body must be replayed on retry")
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusTooManyRequests)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{
		URL:    server.URL,
		Method: http.MethodPost,
		Body:   bytes.NewReader([]byte(`{"url":"https://example.com"}`)),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_MaxRetriesExceeded(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusServiceUnavailable)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.Error(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount)) // Initial call + 2 retries

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 3, statusErr.Attempts)
}

func TestRetryHandler_NonRetryableStatus(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(fastRetry(http.StatusTooManyRequests)).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
}

func TestRetryHandler_ContextCancelled(t *testing.T) {
	rh := NewRetryHandler(fastRetry(http.StatusTooManyRequests), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := rh.DoWithRetry(ctx, func(*HTTPRequest) (*HTTPResponse, error) {
		calls++
		return &HTTPResponse{StatusCode: http.StatusOK}, nil
	}, &HTTPRequest{URL: "http://example.com"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestRetryHandler_CalculateDelay(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{
		MaxRetries: 5,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   300 * time.Millisecond,
	}, zerolog.Nop())

	assert.Equal(t, 100*time.Millisecond, rh.CalculateDelay(0))
	assert.Equal(t, 200*time.Millisecond, rh.CalculateDelay(1))
	assert.Equal(t, 300*time.Millisecond, rh.CalculateDelay(3), "capped at max delay")
}

func TestRetryHandler_JitterWithTinyDelay(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{
		MaxRetries:   1,
		BaseDelay:    time.Millisecond,
		MaxDelay:     time.Millisecond,
		EnableJitter: true,
	}, zerolog.Nop())

	assert.NotPanics(t, func() { rh.CalculateDelay(3) })
}

func TestRetryHandler_HonorsRetryAfter(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastRetry(http.StatusTooManyRequests)
	cfg.BaseDelay = time.Hour
	cfg.MaxDelay = time.Hour
	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithRetry(cfg).Build()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Retry-After: 0 should override the hour-long backoff")
	}
}

func TestRetryHandler_TransportErrorNotRetried(t *testing.T) {
	rh := NewRetryHandler(fastRetry(http.StatusTooManyRequests), zerolog.Nop())
	boom := errors.New("connection refused")

	calls := 0
	_, err := rh.DoWithRetry(context.Background(), func(*HTTPRequest) (*HTTPResponse, error) {
		calls++
		return nil, boom
	}, &HTTPRequest{URL: "http://example.com"})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	header := func(v string) *HTTPResponse {
		return &HTTPResponse{Headers: map[string]string{"Retry-After": v}}
	}

	d, ok := retryAfter(header("3"), now)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	d, ok = retryAfter(header("0.5"), now)
	assert.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)

	d, ok = retryAfter(header(now.Add(10*time.Second).Format(http.TimeFormat)), now)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, d)

	d, ok = retryAfter(header(now.Add(-time.Minute).Format(http.TimeFormat)), now)
	assert.True(t, ok)
	assert.Zero(t, d)

	_, ok = retryAfter(header("soon"), now)
	assert.False(t, ok)
	_, ok = retryAfter(header("-1"), now)
	assert.False(t, ok)
	_, ok = retryAfter(&HTTPResponse{}, now)
	assert.False(t, ok)
}

func TestRetryHandler_RetryAfterCappedAtMaxDelay(t *testing.T) {
	rh := NewRetryHandler(RetryHandlerConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Second}, zerolog.Nop())
	resp := &HTTPResponse{Headers: map[string]string{"Retry-After": "120"}}

	assert.Equal(t, 2*time.Second, rh.delayFor(0, resp))
	assert.Equal(t, time.Millisecond, rh.delayFor(0, &HTTPResponse{}))
}
