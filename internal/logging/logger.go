// Package logging builds the structured logger used by the phtrees
// command.
//
// Logs go to stderr so that stdout stays free for query documents:
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug})
//	logger.Info("forest loaded", "pairs", f.Len())
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a log severity. Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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

// UnmarshalText lets Level be read from environment variables.
func (l *Level) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "debug":
		*l = LevelDebug
	case "", "info":
		*l = LevelInfo
	case "warn", "warning":
		*l = LevelWarn
	case "error":
		*l = LevelError
	default:
		return fmt.Errorf("unknown log level %q", text)
	}
	return nil
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

// Config configures New. The zero value logs Info and above to stderr as
// text.
type Config struct {
	Level Level
	// JSON selects slog's JSON handler instead of the text handler.
	JSON bool
	// Quiet drops everything below Error.
	Quiet bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger for cfg.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	level := cfg.Level
	if cfg.Quiet && level < LevelError {
		level = LevelError
	}
	opts := &slog.HandlerOptions{Level: level.toSlogLevel()}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything, for tests.
func Discard() *slog.Logger {
	return New(Config{Writer: io.Discard, Level: LevelError})
}
