package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/metrics"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
	"github.com/aleister1102/scamsiren/internal/verdict"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Resolver follows the redirect chain of a URL.
type Resolver interface {
	Resolve(ctx context.Context, url string) models.ResolvedURL
}

// Prober decides whether a URL is live.
type Prober interface {
	Probe(ctx context.Context, url string) models.ReachabilityOutcome
}

// Evaluator looks up the reputation of a live URL.
type Evaluator interface {
	Evaluate(ctx context.Context, url string) models.ScanOutcome
}

// Orchestrator drives URLs through resolve, probe, scan and synthesis.
// It holds no per-URL state and is safe for concurrent use.
type Orchestrator struct {
	resolver  Resolver
	prober    Prober
	evaluator Evaluator
	recorder  *metrics.Recorder
	config    config.OrchestratorConfig
	logger    zerolog.Logger
}

// Batch is one submission fanned out over the pipeline. Results receives
// exactly one report per accepted input, in completion order, and is closed
// once every evaluation has finished.
type Batch struct {
	ID       string
	Results  <-chan models.URLReport
	Rejected []models.RejectedInput
	Size     int
}

// Collect drains Results and returns the reports in arrival order.
func (b *Batch) Collect() []models.URLReport {
	reports := make([]models.URLReport, 0, b.Size)
	for report := range b.Results {
		reports = append(reports, report)
	}
	return reports
}

// New creates an Orchestrator. recorder may be nil.
func New(resolver Resolver, prober Prober, evaluator Evaluator, recorder *metrics.Recorder, cfg config.OrchestratorConfig, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		prober:    prober,
		evaluator: evaluator,
		recorder:  recorder,
		config:    cfg,
		logger:    logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// Evaluate runs a single input through the pipeline. The only error is a
// wrapped common.ErrInvalidInput for empty or unparseable input; every
// network problem is folded into the returned report.
func (o *Orchestrator) Evaluate(ctx context.Context, rawURL string) (models.URLReport, error) {
	target, err := urlhandler.NormalizeURL(rawURL, o.config.DefaultScheme)
	if err != nil {
		return models.URLReport{}, err
	}
	return o.run(ctx, "", rawURL, target), nil
}

// EvaluateBatch normalizes every input, rejects the malformed ones and
// evaluates the rest concurrently, one goroutine per URL. Inputs are not
// deduplicated. It fails with common.ErrNoURLs when nothing is left to do.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, rawURLs []string) (*Batch, error) {
	type task struct {
		input  string
		target string
	}

	batchID := uuid.NewString()
	var tasks []task
	var rejected []models.RejectedInput
	for _, raw := range rawURLs {
		target, err := urlhandler.NormalizeURL(raw, o.config.DefaultScheme)
		if err != nil {
			rejected = append(rejected, models.RejectedInput{Input: raw, Reason: err.Error()})
			continue
		}
		tasks = append(tasks, task{input: raw, target: target})
	}

	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: %d input(s) rejected", common.ErrNoURLs, len(rejected))
	}

	o.logger.Info().
		Str("batch_id", batchID).
		Int("urls", len(tasks)).
		Int("rejected", len(rejected)).
		Msg("Starting batch evaluation")

	results := make(chan models.URLReport, len(tasks))
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			results <- o.run(ctx, batchID, t.input, t.target)
		}(t)
	}

	go func() {
		wg.Wait()
		close(results)
		o.logger.Debug().Str("batch_id", batchID).Msg("Batch evaluation complete")
	}()

	return &Batch{
		ID:       batchID,
		Results:  results,
		Rejected: rejected,
		Size:     len(tasks),
	}, nil
}

// run is the strictly sequential per-URL pipeline.
func (o *Orchestrator) run(ctx context.Context, batchID, input, target string) models.URLReport {
	startedAt := time.Now()
	o.recorder.EvaluationStarted()

	resolved := o.resolver.Resolve(ctx, target)
	reach := o.prober.Probe(ctx, resolved.FinalURL)

	outcome := models.ScanOutcome{Finding: models.NoFinding(resolved.FinalURL)}
	if reach.IsExists() {
		outcome = o.evaluator.Evaluate(ctx, reach.URL)
		o.recorder.ScanCompleted(outcome)
	}

	finalURL := resolved.FinalURL
	if reach.UsedWWWFallback {
		finalURL = reach.URL
	}

	report := models.URLReport{
		BatchID:         batchID,
		Input:           input,
		OriginalURL:     resolved.Original,
		FinalURL:        finalURL,
		HopChain:        resolved.HopChain,
		Reachability:    string(reach.State),
		UsedWWWFallback: reach.UsedWWWFallback,
		SourceTier:      outcome.Finding.SourceTier,
		FailureReason:   outcome.FailureReason,
		Verdict:         verdict.Synthesize(reach, outcome),
		StartedAt:       startedAt,
		Duration:        time.Since(startedAt),
	}

	o.recorder.EvaluationFinished(report)
	o.logger.Info().
		Str("batch_id", batchID).
		Str("url", report.OriginalURL).
		Str("final_url", report.FinalURL).
		Int("hops", resolved.Hops()).
		Str("reachability", report.Reachability).
		Str("source_tier", string(report.SourceTier)).
		Str("classification", string(report.Verdict.Classification)).
		Int("score", report.Verdict.Score).
		Dur("duration", report.Duration).
		Msg("URL evaluated")

	return report
}
