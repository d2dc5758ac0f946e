// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// KeyValueStore is a string-keyed store of string values.
// The service uses two instances: a durable store that survives restarts
// and a session store that lives as long as the process.
//
// Example usage in application layer:
//
//	raw, err := store.Get(ctx, "quotes")
//	if domain.IsNotFound(err) {
//	    // nothing saved yet
//	}
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// RemoteRecord is one record of the remote snapshot.
// Only Title feeds into quotes; the other fields are kept for logging.
type RemoteRecord struct {
	ID     int
	UserID int
	Title  string
	Body   string
}

// RemoteQuoteSource fetches the remote snapshot used for sync.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures to domain.ErrUnavailable
//   - Return records in the order the remote serves them
type RemoteQuoteSource interface {
	// FetchSnapshot returns at most limit records from the remote endpoint.
	// A limit of zero or less returns every record.
	FetchSnapshot(ctx context.Context, limit int) ([]RemoteRecord, error)
}

// QuotePublisher announces newly added quotes to the remote endpoint.
// Publishing is best-effort: callers log failures and carry on.
type QuotePublisher interface {
	// Publish sends q to the remote endpoint.
	// Returns domain.ErrUnavailable if the endpoint is unreachable.
	Publish(ctx context.Context, q domain.Quote) error
}
