package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-value", r.Header.Get("X-Test-Header"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithUserAgent("test-agent").Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{
		URL:     server.URL,
		Method:  http.MethodGet,
		Headers: map[string]string{"X-Test-Header": "test-value"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, `{"status":"ok"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header("Content-Type"))
	assert.Equal(t, server.URL, resp.FinalURL)
}

func TestHTTPClient_Do_RequestHeadersOverrideDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "per-request", r.Header.Get("User-Agent"))
		assert.Equal(t, "from-config", r.Header.Get("X-Default"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.CustomHeaders = map[string]string{"X-Default": "from-config"}
	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithConfig(cfg).
		WithUserAgent("configured").
		Build()
	require.NoError(t, err)

	_, err = client.Do(&HTTPRequest{
		URL:    server.URL,
		Method: http.MethodGet,
		Headers: map[string]string{
			"User-Agent": "per-request",
			"Accept":     "application/json",
		},
	})
	require.NoError(t, err)
}

func TestHTTPClient_Do_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"key":"value"}`, string(body))

		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{
		URL:     server.URL,
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader([]byte(`{"key":"value"}`)),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"received":true}`, string(resp.Body))
}

func TestHTTPClient_Redirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/final", http.StatusFound)
		case "/final":
			fmt.Fprint(w, "ok")
		}
	}))
	defer ts.Close()

	clientFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(true).Build()
	require.NoError(t, err)
	req := &HTTPRequest{URL: ts.URL + "/redirect", Method: http.MethodGet}
	resp, err := clientFollow.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, ts.URL+"/final", resp.FinalURL)

	clientNoFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(false).Build()
	require.NoError(t, err)
	resp, err = clientNoFollow.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, resp.IsRedirect())
	assert.Equal(t, "/final", resp.Header("Location"))
}

func TestHTTPClient_MaxRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer ts.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxRedirects(3).Build()
	require.NoError(t, err)

	_, err = client.Do(&HTTPRequest{URL: ts.URL, Method: http.MethodGet})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}

func TestHTTPClient_MaxContentSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is some very long content"))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxContentSize(10).Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, "this is so", string(resp.Body))
	assert.True(t, resp.Truncated)
}

func TestHTTPClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Do(&HTTPRequest{URL: server.URL, Method: http.MethodGet, Context: ctx})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_InvalidProxy(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.Proxy = "://bad"

	_, err := NewHTTPClient(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "proxy"))
}

func TestConfigFromApp(t *testing.T) {
	app := config.NewDefaultHTTPClientConfig()
	app.UserAgent = "agent/1"
	app.CustomHeaders = map[string]string{"X-A": "1"}
	app.EnableHTTP2 = false

	cfg := ConfigFromApp(app)
	assert.Equal(t, "agent/1", cfg.UserAgent)
	assert.False(t, cfg.EnableHTTP2)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, map[string]string{"X-A": "1"}, cfg.CustomHeaders)

	app.CustomHeaders["X-A"] = "changed"
	assert.Equal(t, "1", cfg.CustomHeaders["X-A"], "headers are copied")
}
