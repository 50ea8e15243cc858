// Package logger sets up process wide logging: a log/slog handler writing
// either to stderr or to a size rotated file.
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/go-while/go-advice/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output bundles the configured writer and the slog logger built on it
type Output struct {
	Writer io.Writer
	Logger *slog.Logger
	level  slog.Level
	closer io.Closer
}

// New builds the log output described by cfg. It does not touch global state.
func New(cfg config.LogConfig) *Output {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}
		w = rotator
		closer = rotator
	}

	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Output{Writer: w, Logger: slog.New(handler), level: level, closer: closer}
}

// Install makes o the default for log/slog and for the log package,
// so plain log.Printf lines end up in the same handler.
// Those lines are passed at BridgeLevel and survive a warn or error config.
func (o *Output) Install() {
	slog.SetDefault(o.Logger)
	slog.SetLogLoggerLevel(o.BridgeLevel())
	log.SetFlags(0)
}

// BridgeLevel is the level of plain log.Printf lines: info, or the
// configured level when that is higher
func (o *Output) BridgeLevel() slog.Level {
	return max(o.level, slog.LevelInfo)
}

// Close releases the rotated file, if any
func (o *Output) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// ParseLevel maps a config level string to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
