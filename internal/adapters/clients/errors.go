// Package clients is the outbound HTTP layer for remote services: retries,
// a circuit breaker, tracing and request ID propagation. It knows nothing of
// quotes; the acl package turns its errors into domain errors.
package clients

import "errors"

var (
	// ErrCircuitOpen means the call was refused without contacting the remote.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once attempts run out.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
