package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CategoryOption is one entry of a rendered category filter.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoriesOf returns the distinct lower-cased categories of c in first-seen order.
func CategoriesOf(c Collection) []string {
	seen := make(map[string]struct{}, len(c))
	categories := make([]string, 0, len(c))

	for _, q := range c {
		category := strings.ToLower(q.Category)
		if _, ok := seen[category]; ok {
			continue
		}

		seen[category] = struct{}{}
		categories = append(categories, category)
	}

	return categories
}

// FilterByCategory returns the quotes whose category equals selector, ignoring case.
// The "all" selector returns c unchanged. There is no partial matching.
func FilterByCategory(c Collection, selector string) Collection {
	selector = strings.ToLower(selector)
	if selector == CategoryAll {
		return c
	}

	filtered := make(Collection, 0, len(c))
	for _, q := range c {
		if strings.ToLower(q.Category) == selector {
			filtered = append(filtered, q)
		}
	}

	return filtered
}

// CategoryOptions builds the filter options for c: the synthetic "all" entry
// followed by every category with a capitalized label.
func CategoryOptions(c Collection) []CategoryOption {
	categories := CategoriesOf(c)

	options := make([]CategoryOption, 0, len(categories)+1)
	options = append(options, CategoryOption{Value: CategoryAll, Label: "All Categories"})

	for _, category := range categories {
		options = append(options, CategoryOption{Value: category, Label: capitalize(category)})
	}

	return options
}

// HasCategory reports whether selector is "all" or a category present in c.
func HasCategory(c Collection, selector string) bool {
	selector = strings.ToLower(selector)
	if selector == CategoryAll {
		return true
	}

	for _, q := range c {
		if strings.ToLower(q.Category) == selector {
			return true
		}
	}

	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
