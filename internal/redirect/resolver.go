package redirect

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/httpclient"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
	"github.com/rs/zerolog"
)

// Resolver follows HTTP redirects one hop at a time so that every
// intermediate URL is recorded.
type Resolver struct {
	client *httpclient.HTTPClient
	config config.RedirectConfig
	logger zerolog.Logger
}

// NewResolver wraps an existing client. The client must not follow
// redirects itself.
func NewResolver(client *httpclient.HTTPClient, cfg config.RedirectConfig, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "RedirectResolver").Logger(),
	}
}

// NewResolverFromConfig builds the dedicated no-follow client the resolver needs.
func NewResolverFromConfig(httpCfg config.HTTPClientConfig, cfg config.RedirectConfig, logger zerolog.Logger) (*Resolver, error) {
	clientCfg := httpclient.ConfigFromApp(httpCfg)
	clientCfg.FollowRedirects = false
	clientCfg.Timeout = cfg.HopTimeout()
	clientCfg.MaxContentSize = cfg.MaxMetaRefreshBodyBytes

	client, err := httpclient.NewHTTPClientBuilder(logger).WithConfig(clientCfg).Build()
	if err != nil {
		return nil, err
	}
	return NewResolver(client, cfg, logger), nil
}

// Resolve walks the redirect chain starting at rawURL. It never fails: any
// error ends the walk and the chain collected so far is returned.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) models.ResolvedURL {
	chain := []string{rawURL}
	seen := map[string]struct{}{rawURL: {}}
	current := rawURL

	maxHops := r.maxHops()
	for hop := 0; hop < maxHops; hop++ {
		next, ok := r.nextHop(ctx, current)
		if !ok {
			break
		}
		if _, loop := seen[next]; loop {
			r.logger.Debug().Str("url", current).Str("next", next).Msg("Redirect loop detected, stopping")
			break
		}

		chain = append(chain, next)
		seen[next] = struct{}{}
		current = next
	}

	resolved := models.NewResolvedURL(chain)
	if resolved.Redirected() {
		r.logger.Debug().
			Str("original", resolved.Original).
			Str("final", resolved.FinalURL).
			Int("hops", resolved.Hops()).
			Msg("Redirect chain resolved")
	}
	return resolved
}

func (r *Resolver) maxHops() int {
	if r.config.MaxHops <= 0 || r.config.MaxHops > models.MaxHops {
		return models.MaxHops
	}
	return r.config.MaxHops
}

// nextHop returns the URL current points at, if any.
func (r *Resolver) nextHop(ctx context.Context, current string) (string, bool) {
	resp, err := r.fetch(ctx, current, http.MethodHead, nil)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", current).Msg("HEAD failed, stopping chain")
		return "", false
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = r.fetch(ctx, current, http.MethodGet, map[string]string{"Range": "bytes=0-0"})
		if err != nil {
			r.logger.Debug().Err(err).Str("url", current).Msg("Ranged GET failed, stopping chain")
			return "", false
		}
	}

	if resp.IsRedirect() {
		location := resp.Header("Location")
		if location == "" {
			return "", false
		}
		base, err := url.Parse(current)
		if err != nil {
			return "", false
		}
		next, err := urlhandler.ResolveURL(location, base)
		if err != nil {
			r.logger.Debug().Err(err).Str("url", current).Str("location", location).Msg("Unusable Location header")
			return "", false
		}
		return next, true
	}

	if r.config.FollowMetaRefresh && resp.IsSuccess() && isHTML(resp.Header("Content-Type")) {
		return r.metaRefreshTarget(ctx, current)
	}

	return "", false
}

func (r *Resolver) fetch(ctx context.Context, target, method string, headers map[string]string) (*httpclient.HTTPResponse, error) {
	hopCtx := ctx
	if timeout := r.config.HopTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		hopCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return r.client.Do(&httpclient.HTTPRequest{
		URL:     target,
		Method:  method,
		Headers: headers,
		Context: hopCtx,
	})
}
