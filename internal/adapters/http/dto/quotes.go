package dto

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// CreateQuoteRequest is the body of POST /quotes.
type CreateQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=1000"`
	Category string `json:"category" validate:"required,notempty,max=100"`
}

// CategoryPreferenceRequest is the body of PUT /preferences/category.
type CategoryPreferenceRequest struct {
	Category string `json:"category" validate:"required,notempty,max=100"`
}

// ListQuotesRequest holds the query parameters of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	Category string `form:"category" validate:"omitempty,max=100"`
}

// QuoteResponse is one quote in a response body.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// QuoteListItem is a quote with its position in the listed collection.
type QuoteListItem struct {
	Position int `json:"position"`
	QuoteResponse
}

// CategoriesResponse is the body of GET /categories.
type CategoriesResponse struct {
	Options  []domain.CategoryOption `json:"options"`
	Selected string                  `json:"selected"`
}

// CategoryPreferenceResponse echoes the normalized saved preference.
type CategoryPreferenceResponse struct {
	Category string `json:"category"`
}

// ImportResponse reports how many quotes an import appended.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// ConflictResponse describes a pending sync conflict.
type ConflictResponse struct {
	Message    string          `json:"message"`
	Summary    string          `json:"summary"`
	Diff       string          `json:"diff"`
	Remote     []QuoteResponse `json:"remote"`
	Local      []QuoteResponse `json:"local"`
	DetectedAt time.Time       `json:"detectedAt"`
}

// SyncStatusResponse is the body of the /sync endpoints.
type SyncStatusResponse struct {
	State      string            `json:"state"`
	Running    bool              `json:"running"`
	LastRun    *time.Time        `json:"lastRun,omitempty"`
	LastResult string            `json:"lastResult,omitempty"`
	LastError  string            `json:"lastError,omitempty"`
	Conflict   *ConflictResponse `json:"conflict,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// NewQuoteResponses converts a whole collection.
func NewQuoteResponses(c domain.Collection) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(c))
	for _, q := range c {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// PageQuotes returns one page of c starting after the request's cursor. The
// cursor records the category it was issued for; reusing it with another
// category is a validation error.
func PageQuotes(c domain.Collection, req *ListQuotesRequest, category string) (*PaginatedResponse[QuoteListItem], error) {
	start := 0

	cursor, err := req.DecodeCursor()
	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, domain.NewValidationError("cursor", "is not a valid cursor")
	case cursor.Category != category:
		return nil, domain.NewValidationError("cursor", "was issued for another category")
	default:
		start = cursor.Position + 1
	}

	limit := req.GetLimit()
	end := min(start+limit+1, len(c))

	var items []QuoteListItem
	for i := start; i < end; i++ {
		items = append(items, QuoteListItem{Position: i, QuoteResponse: NewQuoteResponse(c[i])})
	}

	return NewPaginatedResponse(items, limit, func(q QuoteListItem) *QuoteCursor {
		return &QuoteCursor{Position: q.Position, Category: category}
	}), nil
}

// HandleBindError writes a 400 for a failed BindAndValidate or
// BindQueryAndValidate, with field details when validation failed.
func HandleBindError(c *gin.Context, err error) {
	if IsValidationError(err) {
		c.JSON(http.StatusBadRequest, NewErrorResponse(
			ErrorCodeValidation,
			"request validation failed",
		).WithDetails(ValidationErrors(err)).WithTraceID(GetTraceID(c)))

		return
	}

	c.JSON(http.StatusBadRequest, NewErrorResponse(
		ErrorCodeBadRequest,
		"request body could not be read",
	).WithTraceID(GetTraceID(c)))
}
