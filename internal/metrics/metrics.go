package metrics

import (
	"time"

	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder publishes pipeline metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	verdictsTotal    *prometheus.CounterVec
	scanTierTotal    *prometheus.CounterVec
	scanFailures     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	inflight         prometheus.Gauge
}

// NewRecorder registers the pipeline metrics on reg under namespace.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		verdictsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verdicts_total",
				Help:      "Total number of verdicts produced, by classification.",
			},
			[]string{"classification"},
		),
		scanTierTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_tier_total",
				Help:      "Total number of scan lookups, by the tier that produced the finding.",
			},
			[]string{"tier"},
		),
		scanFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scan_failures_total",
				Help:      "Total number of scan lookups that produced no finding, by reason.",
			},
			[]string{"reason"},
		),
		pipelineDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Duration of one URL evaluation from resolve to verdict.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 15, 30, 60},
			},
		),
		inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "inflight_evaluations",
				Help:      "Number of URL evaluations currently running.",
			},
		),
	}
}

// EvaluationStarted marks one evaluation as running.
func (r *Recorder) EvaluationStarted() {
	if r == nil {
		return
	}
	r.inflight.Inc()
}

// EvaluationFinished records the verdict of a finished evaluation.
func (r *Recorder) EvaluationFinished(report models.URLReport) {
	if r == nil {
		return
	}
	r.inflight.Dec()
	r.pipelineDuration.Observe(report.Duration.Seconds())
	r.verdictsTotal.WithLabelValues(string(report.Verdict.Classification)).Inc()
}

// ScanCompleted records which tier answered, or why none did.
func (r *Recorder) ScanCompleted(outcome models.ScanOutcome) {
	if r == nil {
		return
	}
	r.scanTierTotal.WithLabelValues(string(outcome.Finding.SourceTier)).Inc()
	if outcome.FailureReason != models.FailureNone {
		r.scanFailures.WithLabelValues(string(outcome.FailureReason)).Inc()
	}
}

// ObserveDuration is a convenience for timing code outside a report.
func (r *Recorder) ObserveDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.pipelineDuration.Observe(d.Seconds())
}
