package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request-scoped logger, or the default one when ctx
// carries none.
func FromContext(ctx context.Context) *slog.Logger {
	logger, _ := FromContextOK(ctx)
	return logger
}

// FromContextOK also reports whether ctx carried a logger, for callers that
// prefer their own fallback.
func FromContextOK(ctx context.Context) (*slog.Logger, bool) {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger, true
		}
	}

	return defaultLogger, false
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// with attaches the context logger enriched by one string attribute.
func with(ctx context.Context, key, value string) context.Context {
	return WithContext(ctx, FromContext(ctx).With(slog.String(key, value)))
}

// WithRequestID tags every later log line in ctx with request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return with(ctx, "request_id", id)
}

// WithCorrelationID tags every later log line in ctx with correlation_id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return with(ctx, "correlation_id", id)
}

// WithTraceID tags every later log line in ctx with trace_id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return with(ctx, "trace_id", id)
}

// SetDefault replaces both the fallback logger and slog's default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
