package acl

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// BaseAdapter runs requests against one remote and maps every failure to a
// domain error naming it.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter wraps client for the remote called serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName is the remote's name in errors and health reports.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get returns the body of a successful GET. The caller closes it.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	return a.body(resp, err, operation)
}

// Post returns the body of a successful JSON POST. The caller closes it.
func (a *BaseAdapter) Post(ctx context.Context, path string, payload io.Reader, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, payload)
	return a.body(resp, err, operation)
}

func (a *BaseAdapter) body(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// ReadLimited reads at most limit bytes of body and closes it. A larger body
// means the remote is misbehaving and is reported as unavailable.
func ReadLimited(body io.ReadCloser, limit int64, serviceName string) ([]byte, error) {
	if body == nil {
		return nil, domain.NewUnavailableError(serviceName, "response body is nil")
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("reading response: %v", err))
	}

	if int64(len(data)) > limit {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("response exceeds %d bytes", limit))
	}

	return data, nil
}

// ValidateRequired rejects an empty outbound field before any request is made.
func ValidateRequired(value, fieldName string) error {
	if value == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}

// Translator maps one external item into the domain, rejecting items it
// cannot represent.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice translates every item, stopping at the first failure.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]*D, error) {
	result := make([]*D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}
