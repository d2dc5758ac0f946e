package acl

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// maxErrorBodyBytes bounds how much of a failed response is read for a
// message.
const maxErrorBodyBytes = 8 << 10

// MapHTTPError turns a failed remote call into a domain error. Exactly one of
// resp and clientErr is expected; a response below 400 maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	status := resp.StatusCode
	if status < http.StatusBadRequest {
		return nil
	}

	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	}

	message := firstString(body, "error.message", "message")
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", operation, status)
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, requestPath(resp))
	case status == http.StatusConflict:
		return domain.NewConflictError(serviceName, message)
	case status == http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	case status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, message)
	default:
		return domain.NewValidationError(firstDetailKey(body), message)
	}
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

// firstString returns the first non-empty string among paths. Remotes use
// both {"error":{"message":...}} and {"message":...}.
func firstString(body []byte, paths ...string) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	for _, r := range gjson.GetManyBytes(body, paths...) {
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}

	return ""
}

// firstDetailKey names the first field in {"error":{"details":{...}}}.
func firstDetailKey(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	var field string

	gjson.GetBytes(body, "error.details").ForEach(func(key, _ gjson.Result) bool {
		field = key.String()
		return false
	})

	return field
}

func requestPath(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}

	return resp.Request.URL.Path
}
