package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, http.NoBody)

	return c, w
}

func TestGetTraceID(t *testing.T) {
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{0x0a, 0x0b},
		SpanID:  trace.SpanID{0x01},
	})

	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "explicit value wins",
			setup: func(c *gin.Context) { c.Set(traceIDKey, "explicit"); c.Request.Header.Set(headerRequestID, "req-1") },
			want:  "explicit",
		},
		{
			name: "span context",
			setup: func(c *gin.Context) {
				c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), spanCtx))
				c.Request.Header.Set(headerRequestID, "req-1")
			},
			want: spanCtx.TraceID().String(),
		},
		{
			name:  "request ID header",
			setup: func(c *gin.Context) { c.Request.Header.Set(headerRequestID, "req-1") },
			want:  "req-1",
		},
		{
			name:  "non string value",
			setup: func(c *gin.Context) { c.Set(traceIDKey, 42) },
			want:  "",
		},
		{
			name:  "nothing",
			setup: func(*gin.Context) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("/")
			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantLogged  string
	}{
		{
			name:        "missing quote",
			err:         domain.NewNotFoundError("quote", "7"),
			wantStatus:  http.StatusNotFound,
			wantCode:    ErrorCodeNotFound,
			wantMessage: "quote",
		},
		{
			name:        "forbidden write",
			err:         domain.NewForbiddenError("addQuote", "no subject"),
			wantStatus:  http.StatusForbidden,
			wantCode:    ErrorCodeForbidden,
			wantMessage: "addQuote",
		},
		{
			name:        "remote down",
			err:         domain.NewUnavailableError("remote-quotes", "circuit open"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "temporarily unavailable",
			wantLogged:  "circuit open",
		},
		{
			name:        "unknown",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "internal error",
			wantLogged:  "disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer

			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			c, w := newContext("/api/v1/quotes")
			c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
			c.Set(traceIDKey, "trace-1")

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
			assert.Equal(t, "trace-1", resp.TraceID)
			assert.NotContains(t, w.Body.String(), "disk on fire")

			if tt.wantLogged != "" {
				assert.Contains(t, logs.String(), `"msg":"request failed"`)
				assert.Contains(t, logs.String(), tt.wantLogged)
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusFromCode(ErrorCodeTimeout))
	assert.Equal(t, http.StatusConflict, HTTPStatusFromCode(ErrorCodeConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode("SOMETHING_NEW"))
}

func TestGetLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: DefaultLimit},
		{limit: -3, want: DefaultLimit},
		{limit: 1, want: 1},
		{limit: MaxLimit, want: MaxLimit},
		{limit: MaxLimit + 1, want: MaxLimit},
	}

	for _, tt := range tests {
		p := PaginationRequest{Limit: tt.limit}
		assert.Equal(t, tt.want, p.GetLimit(), "limit %d", tt.limit)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := &QuoteCursor{Position: 41, Category: "motivation"}

	encoded := EncodeCursor(in)
	assert.NotContains(t, encoded, "=", "cursors are unpadded so they survive query strings")

	out, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.Empty(t, EncodeCursor(nil))

	_, err = DecodeCursor("")
	assert.ErrorIs(t, err, ErrNoCursor)

	_, err = (&PaginationRequest{Cursor: "!!"}).DecodeCursor()
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestNewPaginatedResponse(t *testing.T) {
	items := []QuoteListItem{{Position: 4}, {Position: 5}, {Position: 6}}
	next := func(q QuoteListItem) *QuoteCursor { return &QuoteCursor{Position: q.Position, Category: "all"} }

	t.Run("more pages", func(t *testing.T) {
		page := NewPaginatedResponse(items, 2, next)

		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasMore)

		cursor, err := DecodeCursor(page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, 5, cursor.Position)
	})

	t.Run("last page", func(t *testing.T) {
		page := NewPaginatedResponse(items, 3, next)

		assert.Len(t, page.Items, 3)
		assert.False(t, page.HasMore)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("nil items encode as an empty list", func(t *testing.T) {
		body, err := json.Marshal(NewPaginatedResponse[QuoteListItem](nil, 20, next))
		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[],"hasMore":false}`, string(body))
	})
}

func TestBindAndValidate_CreateQuote(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantDetails map[string]string
	}{
		{
			name: "valid",
			body: `{"text":"Stay hungry.","category":"motivation"}`,
		},
		{
			name:        "missing category",
			body:        `{"text":"Stay hungry."}`,
			wantDetails: map[string]string{"category": "this field is required"},
		},
		{
			name:        "whitespace text",
			body:        `{"text":"   ","category":"motivation"}`,
			wantDetails: map[string]string{"text": "must not be empty"},
		},
		{
			name:        "long category",
			body:        `{"text":"Stay hungry.","category":"` + strings.Repeat("c", 101) + `"}`,
			wantDetails: map[string]string{"category": "must be at most 100 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext("/")
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req CreateQuoteRequest

			err := BindAndValidate(c, &req)
			if tt.wantDetails == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantDetails, ValidationErrors(err))
		})
	}
}

func TestBindQueryAndValidate_ListQuotes(t *testing.T) {
	t.Run("query names in details", func(t *testing.T) {
		c, _ := newContext("/api/v1/quotes?limit=500")

		var req ListQuotesRequest

		err := BindQueryAndValidate(c, &req)
		require.Error(t, err)
		assert.Equal(t, map[string]string{"limit": "must be at most 100"}, ValidationErrors(err))
	})

	t.Run("malformed limit is a binding error", func(t *testing.T) {
		c, _ := newContext("/api/v1/quotes?limit=ten")

		var req ListQuotesRequest

		err := BindQueryAndValidate(c, &req)
		require.ErrorIs(t, err, ErrBinding)
		assert.False(t, IsValidationError(err))
		assert.Empty(t, ValidationErrors(err))
	})

	t.Run("valid", func(t *testing.T) {
		c, _ := newContext("/api/v1/quotes?limit=5&category=Wisdom")

		var req ListQuotesRequest

		require.NoError(t, BindQueryAndValidate(c, &req))
		assert.Equal(t, 5, req.GetLimit())
		assert.Equal(t, "Wisdom", req.Category)
	})
}
