// Package logging builds the slog handlers used by the daemon.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SetupHandlerText returns a human readable handler writing to w (stderr
// when nil). "trace" is debug with caller and timestamps.
func SetupHandlerText(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}

	opts := log.Options{Level: log.InfoLevel}
	switch strings.ToLower(level) {
	case "trace":
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		opts.ReportTimestamp = true
	case "debug":
		opts.Level = log.DebugLevel
		opts.ReportTimestamp = true
	case "warn", "warning":
		opts.Level = log.WarnLevel
	case "error":
		opts.Level = log.ErrorLevel
	}

	return log.NewWithOptions(w, opts)
}

// SetupHandlerJSON returns a JSON handler writing to w (stdout when nil).
func SetupHandlerJSON(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch strings.ToLower(level) {
	case "trace":
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn", "warning":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	return slog.NewJSONHandler(w, opts)
}

// New builds a logger for the given format and level. Unknown formats fall
// back to text.
func New(format, level string, w io.Writer) *slog.Logger {
	if strings.ToLower(format) == FormatJSON {
		return slog.New(SetupHandlerJSON(level, w))
	}
	return slog.New(SetupHandlerText(level, w))
}
