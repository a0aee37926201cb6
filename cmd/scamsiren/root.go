package main

import (
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/aleister1102/scamsiren/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scamsiren",
		Short: "Evaluate the scam risk of URLs",
		Long: `scamsiren follows a URL's redirects, checks that the destination is live,
looks up its urlscan.io reputation and prints a risk verdict.

Examples:
  # Check a single link
  scamsiren check bit.ly/xyz

  # Check every link found in a message
  scamsiren check --text "Your parcel is waiting: http://dhl-track.example/pay"

  # Show stored medium and high risk verdicts
  scamsiren history --elevated`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the YAML/JSON config file (default: search "+config.EnvConfigPath+", ./config.yaml, executable dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// setup loads and validates the configuration and builds the logger.
func (o *rootOptions) setup() (*config.GlobalConfig, zerolog.Logger, error) {
	bootstrap := zerolog.Nop()

	cfg, err := config.LoadGlobalConfig(o.configPath, bootstrap)
	if err != nil {
		return nil, bootstrap, err
	}
	if o.logLevel != "" {
		cfg.LogConfig.LogLevel = o.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, bootstrap, err
	}

	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, bootstrap, err
	}
	return cfg, log, nil
}
