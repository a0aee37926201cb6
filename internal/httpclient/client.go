package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client. It is safe for concurrent use and is
// meant to be built once and shared.
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	bufferPool   sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, newError("parse proxy URL", config.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		maxRedirects := config.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}, nil
}

// Config returns the configuration the client was built with
func (c *HTTPClient) Config() HTTPClientConfig {
	return c.config
}

// Do performs an HTTP request, with retries if a retry handler is configured.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return c.retryHandler.DoWithRetry(ctx, c.do, req)
	}
	return c.do(req)
}

// do performs the actual HTTP request. A request body must be replayable
// (bytes.Reader or strings.Reader) when retries are enabled.
func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if req.Body != nil {
		if seeker, ok := req.Body.(io.Seeker); ok {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, newError("rewind request body", req.URL, err)
			}
		}
		body = req.Body
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, newError("build request", req.URL, err)
	}

	// Defaults first so request headers can override them
	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, newError("request", req.URL, err)
	}
	defer resp.Body.Close()

	bodyBytes, truncated, err := c.readBody(resp.Body)
	if err != nil {
		return nil, newError("read body", req.URL, err)
	}

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       bodyBytes,
		FinalURL:   req.URL,
		Truncated:  truncated,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		httpResp.FinalURL = resp.Request.URL.String()
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}

// readBody copies the body through a pooled buffer, honoring MaxContentSize
func (c *HTTPClient) readBody(r io.Reader) ([]byte, bool, error) {
	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	limit := int64(c.config.MaxContentSize)
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, false, err
	}

	truncated := false
	n := buf.Len()
	if limit > 0 && int64(n) > limit {
		n = int(limit)
		truncated = true
	}

	// Copy out so the pooled buffer can be reused
	bodyBytes := make([]byte, n)
	copy(bodyBytes, buf.Bytes()[:n])
	return bodyBytes, truncated, nil
}
