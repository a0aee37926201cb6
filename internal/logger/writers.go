package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "2006-01-02 15:04:05"

// formatWriter wraps out for format. Colors only make sense on a terminal.
func formatWriter(out io.Writer, format Format, color bool) io.Writer {
	switch format {
	case FormatJSON:
		return out
	case FormatText:
		color = false
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: !color, TimeFormat: timeFormat}
}

// fileWriter returns a size-rotated writer for opts.FilePath.
func fileWriter(opts Options) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
		return nil, err
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}
	return formatWriter(rotating, opts.Format, false), nil
}
