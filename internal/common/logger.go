package common

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// InitLogger builds the process logger and installs it as slog's default.
func InitLogger(cfg LogConfig) *slog.Logger {
	return initLogger(cfg, os.Stdout)
}

// InitLoggerTo is InitLogger writing to w.
func InitLoggerTo(cfg LogConfig, w io.Writer) *slog.Logger {
	return initLogger(cfg, w)
}

func initLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
