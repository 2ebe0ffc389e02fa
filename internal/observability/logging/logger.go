// Package logging builds the process-wide slog logger and enriches
// log entries with per-request context.
package logging

import (
	"context"
	"log/slog"
	"os"

	"nexuspulse/internal/handler/http/requestid"
)

// NewLogger creates a structured logger configured from the environment.
//
//	LOG_LEVEL   debug, info, warn or error (default info)
//	LOG_FORMAT  json or text (default json)
//
// Source locations are recorded on every log line when the configured
// level is warn or lower; at the error level they are left off.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
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

// WithRequestID returns a logger that tags every entry with the request
// ID from ctx, or the logger unchanged when no ID is present.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	id := requestid.FromContext(ctx)
	if id == "" {
		return logger
	}
	return logger.With("request_id", id)
}
