// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger that remembers which output format it was
// built with.
type Logger struct {
	*slog.Logger
	format string
}

// Format returns "text" or "json".
func (l *Logger) Format() string { return l.format }

var levels = map[string]slog.Level{
	"DEBUG": slog.LevelDebug,
	"INFO":  slog.LevelInfo,
	"WARN":  slog.LevelWarn,
	"ERROR": slog.LevelError,
}

// SetupLogger builds a Logger writing to output. Unknown levels fall
// back to info, unknown formats to text.
func SetupLogger(level, format string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	lv, ok := levels[strings.ToUpper(level)]
	if !ok {
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}

	var handler slog.Handler
	format = strings.ToLower(format)
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		format = "text"
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), format: format}
}
