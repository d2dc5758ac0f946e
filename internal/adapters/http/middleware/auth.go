package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

const (
	callerKey            = "caller"
	defaultSubjectHeader = "X-User-ID"
)

// Caller is the identity the gateway in front of the service asserted for
// a request. The service trusts the header and does no verification.
type Caller struct {
	Subject string
}

// CallerFrom returns the caller RequireAuth accepted, if any.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}

	caller, ok := v.(Caller)

	return caller, ok
}

// RequireAuth answers 403 FORBIDDEN when the subject header is missing or
// blank. An accepted subject is stored for CallerFrom and added to the
// request logger.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	header := defaultSubjectHeader
	if cfg != nil && cfg.SubjectHeader != "" {
		header = cfg.SubjectHeader
	}

	return func(c *gin.Context) {
		subject := strings.TrimSpace(c.GetHeader(header))
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrorCodeForbidden, "authentication required").
					WithTraceID(dto.GetTraceID(c)))

			return
		}

		c.Set(callerKey, Caller{Subject: subject})

		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logging.WithContext(ctx,
			logging.FromContext(ctx).With("subject", subject)))

		c.Next()
	}
}
