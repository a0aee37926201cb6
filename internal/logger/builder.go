package logger

import (
	"io"
	stdlog "log"
	"os"

	"github.com/aleister1102/scamsiren/internal/common"
	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder assembles a zerolog.Logger writing to the console and,
// optionally, to a rotating file.
type LoggerBuilder struct {
	opts    Options
	console io.Writer
}

// NewLoggerBuilder starts from info level console output on stderr.
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		opts:    OptionsFromConfig(config.LogConfig{}),
		console: os.Stderr,
	}
}

// WithConfig replaces the options with the ones resolved from cfg.
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.opts = OptionsFromConfig(cfg)
	return lb
}

// WithLevel overrides the configured level.
func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.opts.Level = level
	return lb
}

// WithConsoleWriter replaces stderr as the console destination.
func (lb *LoggerBuilder) WithConsoleWriter(w io.Writer) *LoggerBuilder {
	lb.console = w
	return lb
}

// Build creates the logger and routes the standard log package through it.
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.opts.MaxSizeMB <= 0 {
		return nil, common.NewValidationError("max_size_mb", lb.opts.MaxSizeMB, "max size must be positive")
	}

	writers := []io.Writer{formatWriter(lb.console, lb.opts.Format, lb.console == os.Stderr)}
	if lb.opts.FilePath != "" {
		fw, err := fileWriter(lb.opts)
		if err != nil {
			return nil, common.WrapErrorf(err, "failed to open log file %s", lb.opts.FilePath)
		}
		writers = append(writers, fw)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.opts.Level).
		With().
		Timestamp().
		Logger()

	stdlog.SetOutput(zl)
	stdlog.SetFlags(0)

	return &Logger{zerolog: zl, opts: lb.opts}, nil
}
