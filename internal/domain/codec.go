package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalCollection renders c as JSON indented with two spaces.
// An empty or nil collection renders as "[]".
func MarshalCollection(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding quotes: %w", err)
	}

	return data, nil
}

// ParseCollection decodes a JSON array of quote records.
// Malformed JSON is a ParseError. Well-formed JSON that is not an array is a
// ValidationError, since the content parsed but has the wrong shape.
// Records are returned verbatim; callers decide whether to normalize them.
func ParseCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return nil, NewParseError("quotes", "invalid JSON")
	}

	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, NewValidationError("quotes", "expected a JSON array")
	}

	var c Collection
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, NewParseErrorWithCause("quotes", "records are not quote-shaped", err)
	}

	if c == nil {
		c = Collection{}
	}

	return c, nil
}

// MarshalQuote renders a single quote as compact JSON.
func MarshalQuote(q Quote) ([]byte, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encoding quote: %w", err)
	}

	return data, nil
}

// ParseQuote decodes a single quote record.
func ParseQuote(data []byte) (Quote, error) {
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return Quote{}, NewParseErrorWithCause("quote", "invalid JSON", err)
	}

	return q, nil
}
