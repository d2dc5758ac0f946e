package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Page size bounds for GET /quotes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	// ErrInvalidCursor is returned when a cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor marks a first-page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest holds the paging query parameters.
type PaginationRequest struct {
	// Cursor is the NextCursor of a previous page.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the page size, defaulted and clamped.
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// DecodeCursor returns ErrNoCursor on a first-page request.
func (p *PaginationRequest) DecodeCursor() (*QuoteCursor, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPaginatedResponse trims items to limit. Callers pass up to limit+1 items
// so that a following page can be detected without a second query.
func NewPaginatedResponse[T any](items []T, limit int, next func(T) *QuoteCursor) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	page := &PaginatedResponse[T]{Items: items}

	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true

		if limit > 0 && next != nil {
			page.NextCursor = EncodeCursor(next(page.Items[limit-1]))
		}
	}

	return page
}

// QuoteCursor marks the last quote of a page. Positions index the filtered
// collection, so a cursor is only meaningful for the category it was issued
// under.
type QuoteCursor struct {
	Position int    `json:"p"`
	Category string `json:"c"`
}

// EncodeCursor returns the opaque form of c, or "" for nil.
func EncodeCursor(c *QuoteCursor) string {
	if c == nil {
		return ""
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor.
func DecodeCursor(encoded string) (*QuoteCursor, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var c QuoteCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.Position < 0 {
		return nil, ErrInvalidCursor
	}

	return &c, nil
}
