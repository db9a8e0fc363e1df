// Package context carries per-request values from the HTTP layer down to the
// use cases and the persistence logger.
package context

import (
	"context"
	"log/slog"

	"storefront/internal/domain/entity"
)

type key int

const (
	requestIDKey key = iota
	loggerKey
	identityKey
)

// WithRequestID returns ctx tagged with the request's correlation ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the correlation ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// WithLogger returns ctx carrying a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request-scoped logger, or fallback when there is none.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// WithIdentity returns ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity returns the caller attached by the auth gate.
func Identity(ctx context.Context) (*entity.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*entity.Identity)

	return identity, ok && identity != nil
}
