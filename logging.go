package routeprobe

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures routeprobe's structured logging, matching the
// teacher's slog-everywhere convention (see middleware/logging.go)
// plus optional file rotation for long-lived CI runs.
type LogConfig struct {
	Level      slog.Level
	JSON       bool
	OutputPath string // empty means stderr

	// Rotation, only consulted when OutputPath is non-empty.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultLogConfig logs human-readable text to stderr at Info level.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: slog.LevelInfo}
}

// NewLogger builds a *slog.Logger from cfg. When OutputPath is set,
// writes go through a lumberjack.Logger so a run that spans days of CI
// traffic never produces an unbounded log file.
func NewLogger(cfg LogConfig) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.OutputPath != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 14),
		}
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
