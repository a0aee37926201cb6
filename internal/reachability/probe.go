package reachability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/httpclient"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
	"github.com/rs/zerolog"
)

// HostChecker reports whether a hostname exists. An error wrapping
// common.ErrDNSFailure means it does not; other errors are inconclusive.
type HostChecker interface {
	CheckHost(ctx context.Context, host string) error
}

// Probe decides whether a URL is live.
type Probe struct {
	client  *httpclient.HTTPClient
	checker HostChecker
	config  config.ReachabilityConfig
	logger  zerolog.Logger
}

// NewProbe creates a Probe. checker may be nil to skip the DNS pre-check.
func NewProbe(client *httpclient.HTTPClient, checker HostChecker, cfg config.ReachabilityConfig, logger zerolog.Logger) *Probe {
	return &Probe{
		client:  client,
		checker: checker,
		config:  cfg,
		logger:  logger.With().Str("component", "ReachabilityProbe").Logger(),
	}
}

// NewProbeFromConfig builds the redirect-following client the probe uses.
func NewProbeFromConfig(httpCfg config.HTTPClientConfig, cfg config.ReachabilityConfig, checker HostChecker, logger zerolog.Logger) (*Probe, error) {
	clientCfg := httpclient.ConfigFromApp(httpCfg)
	clientCfg.FollowRedirects = true
	clientCfg.MaxRedirects = cfg.MaxRedirects
	clientCfg.Timeout = cfg.Timeout()
	clientCfg.MaxContentSize = cfg.MaxContentBytes

	client, err := httpclient.NewHTTPClientBuilder(logger).WithConfig(clientCfg).Build()
	if err != nil {
		return nil, err
	}
	return NewProbe(client, checker, cfg, logger), nil
}

// Probe checks rawURL and, when it is unreachable, its www. variant.
// Invalid outcomes are never retried.
func (p *Probe) Probe(ctx context.Context, rawURL string) models.ReachabilityOutcome {
	outcome := p.attempt(ctx, rawURL)
	if outcome.State != models.ReachabilityUnreachable || !p.config.EnableWWWFallback {
		return outcome
	}

	wwwURL, ok := urlhandler.WithWWW(rawURL)
	if !ok {
		return outcome
	}

	p.logger.Debug().Str("url", rawURL).Str("fallback", wwwURL).Str("reason", outcome.Reason).Msg("Unreachable, trying www variant")

	fallback := p.attempt(ctx, wwwURL)
	if fallback.IsExists() {
		fallback.UsedWWWFallback = true
		return fallback
	}
	return outcome
}

func (p *Probe) attempt(ctx context.Context, target string) models.ReachabilityOutcome {
	host := urlhandler.Hostname(target)
	if host == "" {
		return models.Invalid("URL has no hostname")
	}

	if p.checker != nil && p.config.DNSPrecheck && !urlhandler.IsIPHost(host) {
		if err := p.checker.CheckHost(ctx, host); err != nil {
			if errors.Is(err, common.ErrDNSFailure) {
				p.logger.Debug().Str("url", target).Msg("Host does not exist (NXDOMAIN)")
				return models.Invalid(err.Error())
			}
			p.logger.Debug().Err(err).Str("host", host).Msg("DNS pre-check inconclusive, probing anyway")
		}
	}

	attemptCtx := ctx
	if timeout := p.config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := p.client.Do(&httpclient.HTTPRequest{
		URL:     target,
		Method:  http.MethodGet,
		Context: attemptCtx,
	})
	if err != nil {
		switch class := common.ClassifyNetworkError(err); class {
		case common.ErrDNSFailure:
			return models.Invalid(err.Error())
		default:
			p.logger.Debug().Err(err).Str("url", target).Msg("Probe failed")
			return models.Unreachable(target, fmt.Sprintf("%s: %v", class, err))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		outcome := models.Unreachable(target, fmt.Sprintf("HTTP status %d", resp.StatusCode))
		outcome.StatusCode = resp.StatusCode
		return outcome
	}

	return models.Exists(target, resp.StatusCode)
}
