package logger

import (
	"strings"

	"github.com/aleister1102/scamsiren/internal/config"
	"github.com/rs/zerolog"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
	// FormatText is console output without colors.
	FormatText Format = "text"
)

// Options is the resolved logger setup. A console writer on stderr is always
// present; a rotating file is added when FilePath is set.
type Options struct {
	Level      zerolog.Level
	Format     Format
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// OptionsFromConfig resolves cfg, falling back to defaults for anything
// missing or unparseable. Config validation reports bad values separately.
func OptionsFromConfig(cfg config.LogConfig) Options {
	return Options{
		Level:      parseLevel(cfg.LogLevel),
		Format:     parseFormat(cfg.LogFormat),
		FilePath:   cfg.LogFile,
		MaxSizeMB:  positiveOr(cfg.MaxLogSizeMB, config.DefaultMaxLogSizeMB),
		MaxBackups: positiveOr(cfg.MaxLogBackups, config.DefaultMaxLogBackups),
	}
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func parseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatConsole
	}
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
