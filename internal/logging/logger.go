// Package logging configures the structured logger shared by the preparation pipeline
// and the dataprep command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level represents the severity of a log message.
type Level int

const (
	// LevelDebug is for per-split and per-file detail.
	LevelDebug Level = iota
	// LevelInfo is for one line per dataset preparation.
	LevelInfo
	// LevelWarn is for recoverable problems.
	LevelWarn
	// LevelError is for failed preparations.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel accepts the level names used in configuration files, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to log.
	Level Level

	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// Output receives log records. Defaults to os.Stderr.
	Output io.Writer

	// Component, if set, is attached to every record.
	Component string
}

// New returns a slog.Logger for the given configuration.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With(slog.String("component", cfg.Component))
	}
	return logger
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
