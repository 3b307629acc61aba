package http

import (
	"context"
	"log/slog"

	"github.com/example/tutoring-scheduler/internal/logging"
)

// ContextWithLogger attaches a request-scoped logger to the context so
// downstream services pick it up.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request-scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
