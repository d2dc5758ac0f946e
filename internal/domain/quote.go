// Package domain contains core business entities and rules.
package domain

import (
	"slices"
	"strings"
)

// CategoryAll is the filter selector that matches every quote.
const CategoryAll = "all"

// Quote is a displayable aphorism tagged with a category.
// Quotes have no identifier: two quotes with the same text and category are
// indistinguishable, and duplicates are allowed.
type Quote struct {
	// Text is the trimmed quote text.
	Text string `json:"text"`

	// Category is the trimmed, lower-cased category label.
	Category string `json:"category"`
}

// NewQuote validates and normalizes a quote.
// Both fields are trimmed; the category is lower-cased.
// Returns a ValidationError naming the first empty field.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = NormalizeCategory(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	if category == "" {
		return Quote{}, NewValidationError("category", "must not be empty")
	}

	return Quote{Text: text, Category: category}, nil
}

// Normalize returns the quote with the same normalization NewQuote applies.
func (q Quote) Normalize() (Quote, error) {
	return NewQuote(q.Text, q.Category)
}

// NormalizeCategory trims and lower-cases a category label.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Collection is an ordered sequence of quotes in insertion order.
// A nil Collection is a valid empty collection.
type Collection []Quote

// Clone returns an independent copy of the collection.
// The copy is never nil so it serializes as an empty array.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)

	return out
}

// Equal reports whether both collections hold the same quotes in the same order.
func (c Collection) Equal(other Collection) bool {
	return slices.Equal(c, other)
}

// DefaultQuotes returns the built-in collection used when nothing was persisted.
func DefaultQuotes() Collection {
	return Collection{
		{Text: "Success is a journey, not a destination.", Category: "motivation"},
		{Text: "Stay hungry. Stay foolish.", Category: "inspiration"},
		{Text: "Code is like humor — when you have to explain it, it’s bad.", Category: "programming"},
	}
}
