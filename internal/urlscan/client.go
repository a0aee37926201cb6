package urlscan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/httpclient"
	"github.com/rs/zerolog"
)

const (
	searchPath = "/api/v1/search/"
	submitPath = "/api/v1/scan/"
	resultPath = "/api/v1/result/%s/"
	statusPath = "/api/v1/scan/%s/"

	maxResponseBytes = 8 * 1024 * 1024
)

// Client talks to the urlscan.io API (or anything speaking the same
// protocol at BaseURL).
type Client struct {
	http       *httpclient.HTTPClient
	baseURL    string
	apiKey     string
	visibility string
	logger     zerolog.Logger
}

// NewClient builds a Client with its own HTTP client. Requests answered with
// one of the configured retry status codes (429 and 503 by default) are
// retried with exponential backoff.
func NewClient(httpCfg config.HTTPClientConfig, cfg config.URLScanConfig, logger zerolog.Logger) (*Client, error) {
	clientCfg := httpclient.ConfigFromApp(httpCfg)
	if cfg.UserAgent != "" {
		clientCfg.UserAgent = cfg.UserAgent
	}
	clientCfg.Timeout = cfg.RequestTimeout()
	clientCfg.MaxContentSize = maxResponseBytes

	retry := cfg.RetryConfig
	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithConfig(clientCfg).
		WithRetry(httpclient.RetryHandlerConfig{
			MaxRetries:       retry.MaxRetries,
			BaseDelay:        retry.BaseDelay(),
			MaxDelay:         retry.MaxDelay(),
			EnableJitter:     retry.EnableJitter,
			RetryStatusCodes: retry.RetryStatusCodes,
		}).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build urlscan HTTP client")
	}

	return &Client{
		http:       client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		visibility: cfg.Visibility,
		logger:     logger.With().Str("component", "URLScanClient").Logger(),
	}, nil
}

// HasAPIKey reports whether Submit can be used.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Search runs an Elasticsearch query-string search and returns at most one
// hit, newest first.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("size", "1")
	params.Set("sort", "desc")

	var resp SearchResponse
	if err := c.getJSON(ctx, searchPath+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit queues a new scan of target. It fails with common.ErrAPIAuthMissing
// when no API key is configured.
func (c *Client) Submit(ctx context.Context, target string) (*SubmitResponse, error) {
	if !c.HasAPIKey() {
		return nil, common.ErrAPIAuthMissing
	}

	body, err := json.Marshal(SubmitRequest{URL: target, Visibility: c.visibility})
	if err != nil {
		return nil, common.WrapError(err, "failed to encode scan submission")
	}

	resp, err := c.do(ctx, http.MethodPost, submitPath, body)
	if err != nil {
		return nil, err
	}

	var submitted SubmitResponse
	if err := decode(resp, &submitted); err != nil {
		return nil, err
	}
	if submitted.UUID == "" {
		return nil, common.WrapErrorf(common.ErrMalformedResponse, "scan submission for '%s' returned no uuid", target)
	}

	c.logger.Debug().Str("url", target).Str("uuid", submitted.UUID).Msg("Scan submitted")
	return &submitted, nil
}

// Result fetches a finished scan. common.ErrResultNotReady means the result
// has not been materialized yet.
func (c *Client) Result(ctx context.Context, id string) (*ResultPayload, error) {
	var payload ResultPayload
	if err := c.getJSON(ctx, fmt.Sprintf(resultPath, url.PathEscape(id)), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Status returns the lifecycle state of a submitted scan.
func (c *Client) Status(ctx context.Context, id string) (string, error) {
	var status StatusResponse
	if err := c.getJSON(ctx, fmt.Sprintf(statusPath, url.PathEscape(id)), &status); err != nil {
		return "", err
	}
	return status.Status, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*httpclient.HTTPResponse, error) {
	fullURL := c.baseURL + path
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["API-Key"] = c.apiKey
	}

	req := &httpclient.HTTPRequest{
		URL:     fullURL,
		Method:  method,
		Headers: headers,
		Context: ctx,
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
		req.Body = bytes.NewReader(body)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, common.NewHTTPErrorWithURL(statusErr.StatusCode, fmt.Sprintf("still throttled after %d attempt(s)", statusErr.Attempts), fullURL)
		}
		return nil, common.NewNetworkError(fullURL, "urlscan request failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.WrapErrorf(common.ErrResultNotReady, "%s %s", method, path)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.WrapErrorf(common.ErrAPIAuthMissing, "API key rejected for %s %s", method, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, truncate(string(resp.Body), 200), fullURL)
	}
	return resp, nil
}

func decode(resp *httpclient.HTTPResponse, out interface{}) error {
	if resp.Truncated {
		return common.WrapError(common.ErrMalformedResponse, "response exceeded size limit")
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
