package urlscan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
	"github.com/rs/zerolog"
)

// Store looks up reputation results in three tiers: an exact-URL search,
// a registrable-domain search, then a fresh submission polled until ready.
type Store struct {
	client *Client
	config config.URLScanConfig
	logger zerolog.Logger
}

type candidate struct {
	verdict *OverallVerdict
	tier    models.SourceTier
	scanID  string
}

// NewStore creates a Store on top of client.
func NewStore(client *Client, cfg config.URLScanConfig, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "ScanResultStore").Logger(),
	}
}

// Evaluate returns the best finding available for target. It never fails;
// when nothing usable is found the outcome carries a FailureReason.
func (s *Store) Evaluate(ctx context.Context, target string) models.ScanOutcome {
	var best *candidate
	var lastErr error

	verdict, id, err := s.lookupCached(ctx, ExactQuery(target, s.config.ExactWindowDays))
	if err != nil {
		lastErr = err
		s.logger.Debug().Err(err).Str("url", target).Msg("Exact search failed")
	} else if verdict.Ready() {
		best = &candidate{verdict: verdict, tier: models.SourceTierCachedExact, scanID: id}
	}

	if best == nil {
		if query, ok := DomainQuery(target, s.config.DomainWindowDays); ok {
			verdict, id, err = s.lookupCached(ctx, query)
			if err != nil {
				lastErr = err
				s.logger.Debug().Err(err).Str("url", target).Msg("Domain search failed")
			} else if verdict.Ready() {
				best = &candidate{verdict: verdict, tier: models.SourceTierCachedDomain, scanID: id}
			}
		}
	}

	needFresh := best == nil || (s.config.RescanWeakCachedResults && !best.verdict.Strong())
	if needFresh {
		if !s.client.HasAPIKey() {
			if best == nil {
				return models.ScanOutcome{Finding: models.NoFinding(target), FailureReason: models.FailureAPIAuthMissing}
			}
		} else {
			verdict, id, err = s.submitAndPoll(ctx, target)
			switch {
			case err == nil && verdict.Ready():
				return models.ScanOutcome{Finding: toFinding(target, verdict, models.SourceTierFreshSubmission, id)}
			case err != nil:
				s.logger.Debug().Err(err).Str("url", target).Bool("has_cached", best != nil).Msg("Fresh scan did not produce a result")
				lastErr = err
			}
		}
	}

	if best != nil {
		return models.ScanOutcome{Finding: toFinding(target, best.verdict, best.tier, best.scanID)}
	}

	reason := models.FailureNoResult
	if lastErr != nil {
		reason = models.FailureReasonFromError(lastErr)
	}
	return models.ScanOutcome{Finding: models.NoFinding(target), FailureReason: reason}
}

// lookupCached runs a search and returns the overall verdict of the newest
// hit. No hit, or a hit whose result is not materialized, is not an error.
func (s *Store) lookupCached(ctx context.Context, query string) (*OverallVerdict, string, error) {
	resp, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, "", err
	}
	if len(resp.Results) == 0 {
		return nil, "", nil
	}

	hit := resp.Results[0]
	id := hit.ID
	if id == "" {
		id = hit.Task.UUID
	}

	if hit.Verdicts != nil && hit.Verdicts.Overall != nil {
		return hit.Verdicts.Overall, id, nil
	}
	if id == "" {
		return nil, "", common.WrapErrorf(common.ErrMalformedResponse, "search hit for %q has no id", query)
	}

	payload, err := s.client.Result(ctx, id)
	if errors.Is(err, common.ErrResultNotReady) {
		return nil, id, nil
	}
	if err != nil {
		return nil, id, err
	}
	return payload.Overall(), id, nil
}

// submitAndPoll submits target and polls its result until it is ready, the
// scan is reported as failed, or the attempts run out.
func (s *Store) submitAndPoll(ctx context.Context, target string) (*OverallVerdict, string, error) {
	submitted, err := s.client.Submit(ctx, target)
	if err != nil {
		return nil, "", err
	}
	id := submitted.UUID

	maxAttempts := s.config.MaxPollAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.wait(ctx); err != nil {
			return nil, id, err
		}

		payload, err := s.client.Result(ctx, id)
		if err == nil {
			if payload.Overall().Ready() {
				return payload.Overall(), id, nil
			}
			continue
		}

		if !errors.Is(err, common.ErrResultNotReady) {
			s.logger.Debug().Err(err).Str("uuid", id).Int("attempt", attempt).Msg("Result poll failed, will retry")
			continue
		}

		status, statusErr := s.client.Status(ctx, id)
		if statusErr != nil {
			continue
		}

		switch {
		case finishedStatus(status):
			payload, err := s.client.Result(ctx, id)
			if err == nil {
				if payload.Overall().Ready() {
					return payload.Overall(), id, nil
				}
				return nil, id, pollExhausted(id, "scan finished without a verdict")
			}
		case failedStatus(status):
			return nil, id, pollExhausted(id, fmt.Sprintf("scan reported status %q", status))
		}
	}

	return nil, id, pollExhausted(id, fmt.Sprintf("no verdict after %d attempts", maxAttempts))
}

// pollExhausted is the error for a scan that never produced a ready verdict.
func pollExhausted(id, detail string) error {
	return common.WrapErrorf(common.ErrPollExhausted, "scan %s: %s", id, detail)
}

func (s *Store) wait(ctx context.Context) error {
	timer := time.NewTimer(s.config.PollInterval())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExactQuery matches scans of exactly this URL within the last windowDays.
func ExactQuery(target string, windowDays int) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(target)
	return withWindow(fmt.Sprintf(`page.url:"%s"`, escaped), windowDays)
}

// DomainQuery matches scans of any page on the registrable domain of target.
// It returns false when target has no usable host.
func DomainQuery(target string, windowDays int) (string, bool) {
	host := urlhandler.Hostname(target)
	if host == "" {
		return "", false
	}
	domain, err := urlhandler.RegistrableDomain(host)
	if err != nil {
		return "", false
	}
	return withWindow("page.domain:"+domain, windowDays), true
}

func withWindow(clause string, windowDays int) string {
	if windowDays <= 0 {
		return clause
	}
	return fmt.Sprintf("%s AND date:>now-%dd", clause, windowDays)
}
