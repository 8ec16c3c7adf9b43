package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger in ctx for later retrieval by FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx. Contexts that never went
// through WithContext (background jobs, tests) get slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithInstance tags the context logger with the instance key so downstream
// log lines name the connection they belong to. An empty key leaves ctx
// unchanged.
func WithInstance(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return WithContext(ctx, FromContext(ctx).With("instance", key))
}
