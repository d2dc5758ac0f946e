// Package middleware holds the gin middleware chain: request and correlation
// IDs, the request logger, access logging, panic recovery, timeouts and the
// subject check on write routes.
package middleware

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// RequestIDFromContext returns the inbound request ID so outbound calls can
// forward it. It is empty outside a request.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the inbound correlation ID, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}

	s, _ := ctx.Value(key).(string)

	return s
}
