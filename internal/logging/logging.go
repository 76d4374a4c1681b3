package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"physiohub/clinic-app/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger from config: stdout always, plus an optional
// rotating file sink.
func New(cfg config.LoggingConfig) *slog.Logger {
	level := parseLevel(cfg.Level)

	writers := []io.Writer{os.Stdout}
	if cfg.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   true,
		})
	}
	w := io.MultiWriter(writers...)

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
