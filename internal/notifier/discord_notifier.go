// Package notifier posts elevated verdicts to a Discord webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/httpclient"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/rs/zerolog"
)

// DiscordNotifier sends one embed per notable verdict.
type DiscordNotifier struct {
	http   *httpclient.HTTPClient
	cfg    config.NotificationConfig
	logger zerolog.Logger
}

// NewDiscordNotifier builds a notifier using the shared HTTP settings.
// Discord rate limits (429) are retried with backoff.
func NewDiscordNotifier(httpCfg config.HTTPClientConfig, cfg config.NotificationConfig, logger zerolog.Logger) (*DiscordNotifier, error) {
	if !cfg.Enabled() {
		return nil, common.NewValidationError("discord_webhook_url", cfg.DiscordWebhookURL, "webhook URL is required")
	}

	retry := config.NewDefaultRetryConfig()
	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithConfig(httpclient.ConfigFromApp(httpCfg)).
		WithFollowRedirects(false).
		WithRetry(httpclient.RetryHandlerConfig{
			MaxRetries:       retry.MaxRetries,
			BaseDelay:        retry.BaseDelay(),
			MaxDelay:         retry.MaxDelay(),
			EnableJitter:     retry.EnableJitter,
			RetryStatusCodes: []int{http.StatusTooManyRequests},
		}).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to build notifier HTTP client")
	}

	return &DiscordNotifier{
		http:   client,
		cfg:    cfg,
		logger: logger.With().Str("component", "DiscordNotifier").Logger(),
	}, nil
}

// ShouldNotify reports whether a verdict is worth an alert: medium and high
// always, unreachable only when configured.
func (n *DiscordNotifier) ShouldNotify(v models.RiskVerdict) bool {
	switch v.Classification {
	case models.ClassificationMedium, models.ClassificationHigh:
		return true
	case models.ClassificationUnreachable:
		return n.cfg.NotifyUnreachable
	default:
		return false
	}
}

// Notify posts report when ShouldNotify allows it. Skipped reports return nil.
func (n *DiscordNotifier) Notify(ctx context.Context, report models.URLReport) error {
	if !n.ShouldNotify(report.Verdict) {
		return nil
	}

	body, err := json.Marshal(FormatVerdict(report, n.cfg.Username, n.cfg.MentionRoleIDs))
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	resp, err := n.http.Do(&httpclient.HTTPRequest{
		URL:     n.cfg.DiscordWebhookURL,
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    bytes.NewReader(body),
		Context: ctx,
	})
	if err != nil {
		n.logger.Error().Err(err).Str("url", report.OriginalURL).Msg("Failed to send Discord notification")
		return common.WrapError(err, "discord notification failed")
	}
	if !resp.IsSuccess() {
		n.logger.Error().Int("status_code", resp.StatusCode).Str("response_body", string(resp.Body)).Msg("Discord notification rejected")
		return common.NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), "discord webhook")
	}

	n.logger.Debug().Str("url", report.OriginalURL).Str("classification", string(report.Verdict.Classification)).Msg("Discord notification sent")
	return nil
}
