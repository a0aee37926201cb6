package orchestrator

import (
	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/dnscheck"
	"github.com/aleister1102/scamsiren/internal/metrics"
	"github.com/aleister1102/scamsiren/internal/reachability"
	"github.com/aleister1102/scamsiren/internal/redirect"
	"github.com/aleister1102/scamsiren/internal/urlscan"
	"github.com/rs/zerolog"
)

// NewFromConfig wires the production resolver, probe and scan store from
// cfg. Each component gets its own HTTP client, shared by all evaluations.
func NewFromConfig(cfg *config.GlobalConfig, recorder *metrics.Recorder, logger zerolog.Logger) (*Orchestrator, error) {
	resolver, err := redirect.NewResolverFromConfig(cfg.HTTPClientConfig, cfg.RedirectConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create redirect resolver")
	}

	var checker reachability.HostChecker
	if cfg.ReachabilityConfig.DNSPrecheck {
		checker = dnscheck.New(cfg.ReachabilityConfig, logger)
	}
	prober, err := reachability.NewProbeFromConfig(cfg.HTTPClientConfig, cfg.ReachabilityConfig, checker, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create reachability probe")
	}

	client, err := urlscan.NewClient(cfg.HTTPClientConfig, cfg.URLScanConfig, logger)
	if err != nil {
		return nil, err
	}
	store := urlscan.NewStore(client, cfg.URLScanConfig, logger)

	if !client.HasAPIKey() {
		logger.Warn().Msgf("No urlscan API key configured (set %s), fresh scans are disabled", config.EnvURLScanAPIKey)
	}

	return New(resolver, prober, store, recorder, cfg.OrchestratorConfig, logger), nil
}
