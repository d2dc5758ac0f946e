package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

const (
	// HeaderRequestID identifies one request.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID follows a business transaction across services.
	HeaderCorrelationID = "X-Correlation-ID"

	maxInboundIDLen = 128
)

type enricher func(ctx context.Context, id string) context.Context

// RequestID echoes X-Request-ID, or a new UUID when the caller sent none. The
// ID is added to the context logger and forwarded on calls to the remote.
func RequestID() gin.HandlerFunc {
	return propagateID(HeaderRequestID, logging.WithRequestID, ContextWithRequestID)
}

// CorrelationID does the same for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return propagateID(HeaderCorrelationID, logging.WithCorrelationID, ContextWithCorrelationID)
}

func propagateID(header string, enrich ...enricher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if !validInboundID(id) {
			id = uuid.NewString()
		}

		c.Header(header, id)

		ctx := c.Request.Context()
		for _, fn := range enrich {
			ctx = fn(ctx, id)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// validInboundID keeps caller IDs out of logs when they are oversized or
// contain anything but visible ASCII.
func validInboundID(id string) bool {
	if id == "" || len(id) > maxInboundIDLen {
		return false
	}

	for i := range len(id) {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}
