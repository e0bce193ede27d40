// Package rcontext holds the request-scoped logger-in-context convention
// used by the executor's debug logging (client/debug.go), adapted from the
// teacher's internal/extproc/server.go (a private context-key type plus a
// package-level getter defaulting to slog.Default()).
package rcontext

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	loggerContextKey    contextKey = "logger"
	requestIDContextKey contextKey = "request_id"
)

// WithLogger returns a context carrying logger, retrievable via Logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger returns the logger stored in ctx, or slog.Default() if none was set.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRequestID returns a context carrying a request ID for log
// correlation, generating one via uuid if id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the request ID stored in ctx, or "" if none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
