package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/datastore"
	"github.com/aleister1102/scamsiren/internal/metrics"
	"github.com/aleister1102/scamsiren/internal/models"
	"github.com/aleister1102/scamsiren/internal/notifier"
	"github.com/aleister1102/scamsiren/internal/orchestrator"
	"github.com/aleister1102/scamsiren/internal/reporter"
	"github.com/aleister1102/scamsiren/internal/urlhandler"
	"github.com/aleister1102/scamsiren/internal/verdict"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type checkOptions struct {
	text        string
	file        string
	output      string
	noHistory   bool
	noColor     bool
	metricsAddr string
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Evaluate one or more URLs",
		Long: `Evaluate URLs given as arguments, found in --text, or found in --file.
All URLs of one invocation are evaluated concurrently as a single batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := root.setup()
			if err != nil {
				return err
			}
			inputs, err := collectInputs(args, opts.text, opts.file, log)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cfg, opts, inputs, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "Free text to extract URLs from (e.g. a pasted message)")
	cmd.Flags().StringVar(&opts.file, "file", "", "File to extract URLs from")
	cmd.Flags().StringVarP(&opts.output, "output", "o", string(reporter.FormatText), "Output format: text or json")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not store elevated verdicts in the local history")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the batch runs (overrides config)")

	return cmd
}

// collectInputs merges positional URLs with the URLs extracted from --text
// and --file. Positional arguments are kept as given.
func collectInputs(args []string, text, file string, log zerolog.Logger) ([]string, error) {
	inputs := append([]string(nil), args...)

	if text != "" {
		inputs = append(inputs, urlhandler.ExtractURLs(text)...)
	}
	if file != "" {
		content, err := common.NewFileManager(log).ReadFile(file, common.DefaultFileReadOptions())
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, urlhandler.ExtractURLs(string(content))...)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: pass URLs as arguments or use --text/--file", common.ErrNoURLs)
	}
	return inputs, nil
}

func runCheck(ctx context.Context, cfg *config.GlobalConfig, opts *checkOptions, inputs []string, out io.Writer, log zerolog.Logger) error {
	rep, err := reporter.New(reporter.Format(opts.output), out, opts.noColor)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder := metrics.NewRecorder(registry, cfg.MetricsConfig.Namespace)

	metricsAddr := cfg.MetricsConfig.ListenAddr
	if opts.metricsAddr != "" {
		metricsAddr = opts.metricsAddr
	}
	if metricsAddr != "" {
		shutdown := serveMetrics(metricsAddr, registry, log)
		defer shutdown()
	}

	var history *datastore.History
	if cfg.HistoryConfig.Enabled && !opts.noHistory {
		history, err = datastore.NewHistory(cfg.HistoryConfig.SQLiteDBPath, log)
		if err != nil {
			return err
		}
		defer history.Close()
	}

	var alerts *notifier.DiscordNotifier
	if cfg.NotificationConfig.Enabled() {
		alerts, err = notifier.NewDiscordNotifier(cfg.HTTPClientConfig, cfg.NotificationConfig, log)
		if err != nil {
			return err
		}
	}

	orch, err := orchestrator.NewFromConfig(cfg, recorder, log)
	if err != nil {
		return err
	}

	batch, err := orch.EvaluateBatch(ctx, inputs)
	if err != nil {
		return err
	}
	if err := reportRejected(rep, batch.Rejected, log); err != nil {
		return err
	}

	var reportErrs []error
	for report := range batch.Results {
		if err := rep.Report(report); err != nil {
			reportErrs = append(reportErrs, err)
		}
		if alerts != nil {
			if err := alerts.Notify(ctx, report); err != nil {
				log.Warn().Err(err).Str("url", report.OriginalURL).Msg("Failed to send verdict notification")
			}
		}
		if history == nil || !verdict.ShouldPersist(report.Verdict) {
			continue
		}
		// Finished reports are stored even after cancellation.
		if _, err := history.Record(context.WithoutCancel(ctx), report); err != nil {
			log.Warn().Err(err).Str("url", report.OriginalURL).Msg("Failed to store verdict in history")
		}
	}

	return common.CombineErrors(reportErrs)
}

// reportRejected logs and renders the inputs the batch skipped.
func reportRejected(rep reporter.Reporter, rejected []models.RejectedInput, log zerolog.Logger) error {
	for _, in := range rejected {
		log.Warn().Str("input", in.Input).Str("reason", in.Reason).Msg("Skipping input")
	}
	return rep.Rejected(rejected)
}

// serveMetrics exposes registry on addr until the returned func is called.
func serveMetrics(addr string, registry *prometheus.Registry, log zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
