package logger

import (
	"log/slog"
	"os"
)

const serviceName = "fitness-platform"

var defaultLogger *slog.Logger

// Init configures the process-wide logger. Production and staging get JSON
// at info level; everything else gets human-readable text at debug level.
func Init(env string) {
	var handler slog.Handler

	switch env {
	case "production", "staging":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	defaultLogger = slog.New(handler).With("service", serviceName)
	slog.SetDefault(defaultLogger)
}

// LoggerWrapper returns the configured logger, lazily falling back to the
// development setup so early callers never get nil.
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init("development")
	}
	return defaultLogger
}
