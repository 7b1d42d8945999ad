// Package logger builds the leveled slog logger shared by the sampler and
// its consumers.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/Dicklesworthstone/cpumon/internal/config"
)

// Logger is the subset of *slog.Logger the rest of the tree logs through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// New logs to stderr at cfg.LogLevel in cfg.LogFormat.
func New(cfg config.Config) Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg config.Config, w io.Writer) Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h)
}

// Discard drops everything. Used by tests and the TUI, which owns the terminal.
func Discard() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch level {
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
