package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With derives a context carrying a logger enriched with fields; the
// request middleware uses it to scope request_id onto downstream logs.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the context-scoped logger, or the process default when the
// context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
