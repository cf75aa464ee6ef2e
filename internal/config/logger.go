// If you are AI: This file builds the process logger from the log section of the configuration.

package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a slog logger writing to w in the configured format and level.
// Call after Validate; unknown values fall back to text at info.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.level()}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// level maps the configured level name to a slog level.
func (l LogConfig) level() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
