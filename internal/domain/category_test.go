package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func mixedCaseCollection() Collection {
	return Collection{
		{Text: "a", Category: "Motivation"},
		{Text: "b", Category: "humor"},
		{Text: "c", Category: "motivation"},
		{Text: "d", Category: "HUMOR"},
		{Text: "e", Category: "science"},
	}
}

func TestCategoriesOf(t *testing.T) {
	tests := []struct {
		name string
		in   Collection
		want []string
	}{
		{
			name: "defaults",
			in:   DefaultQuotes(),
			want: []string{"motivation", "inspiration", "programming"},
		},
		{
			name: "first-seen order with case folding",
			in:   mixedCaseCollection(),
			want: []string{"motivation", "humor", "science"},
		},
		{
			name: "empty collection",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategoriesOf(tt.in)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("CategoriesOf() mismatch (-want +got):\n%s", diff)
			}

			seen := map[string]bool{}
			for _, category := range got {
				assert.False(t, seen[category], "duplicate category %q", category)
				assert.Equal(t, strings.ToLower(category), category)
				seen[category] = true
			}
		})
	}
}

func TestCategoriesOf_StableAcrossCalls(t *testing.T) {
	c := mixedCaseCollection()

	assert.Equal(t, CategoriesOf(c), CategoriesOf(c))
}

func TestFilterByCategory(t *testing.T) {
	c := mixedCaseCollection()

	t.Run("all returns input unchanged", func(t *testing.T) {
		assert.Equal(t, c, FilterByCategory(c, CategoryAll))
		assert.Equal(t, c, FilterByCategory(c, "ALL"))
	})

	t.Run("case-insensitive exact match", func(t *testing.T) {
		for _, selector := range []string{"humor", "Humor", "HUMOR"} {
			got := FilterByCategory(c, selector)

			assert.Equal(t, Collection{c[1], c[3]}, got, "selector %q", selector)

			for _, q := range got {
				assert.True(t, strings.EqualFold(q.Category, selector))
			}
		}
	})

	t.Run("no partial match", func(t *testing.T) {
		assert.Empty(t, FilterByCategory(c, "hum"))
		assert.Empty(t, FilterByCategory(c, "motivations"))
	})

	t.Run("empty collection", func(t *testing.T) {
		assert.Empty(t, FilterByCategory(nil, "humor"))
	})

	t.Run("motivation against defaults", func(t *testing.T) {
		got := FilterByCategory(DefaultQuotes(), "motivation")

		assert.Equal(t, Collection{DefaultQuotes()[0]}, got)
	})
}

func TestCategoryOptions(t *testing.T) {
	got := CategoryOptions(DefaultQuotes())

	want := []CategoryOption{
		{Value: "all", Label: "All Categories"},
		{Value: "motivation", Label: "Motivation"},
		{Value: "inspiration", Label: "Inspiration"},
		{Value: "programming", Label: "Programming"},
	}

	assert.Equal(t, want, got)
	assert.Equal(t, []CategoryOption{{Value: "all", Label: "All Categories"}}, CategoryOptions(nil))
}

func TestHasCategory(t *testing.T) {
	c := DefaultQuotes()

	assert.True(t, HasCategory(c, "all"))
	assert.True(t, HasCategory(c, "Programming"))
	assert.False(t, HasCategory(c, "server"))
	assert.True(t, HasCategory(nil, "all"))
}
