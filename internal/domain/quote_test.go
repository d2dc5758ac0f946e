package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		category  string
		want      Quote
		wantField string
	}{
		{
			name:     "normalizes category to lower case",
			text:     "Test quote",
			category: "Testing",
			want:     Quote{Text: "Test quote", Category: "testing"},
		},
		{
			name:     "trims both fields",
			text:     "  padded text \t",
			category: "  MiXeD  ",
			want:     Quote{Text: "padded text", Category: "mixed"},
		},
		{
			name:      "empty text",
			text:      "",
			category:  "misc",
			wantField: "text",
		},
		{
			name:      "whitespace-only text",
			text:      "   \n",
			category:  "misc",
			wantField: "text",
		},
		{
			name:      "whitespace-only category",
			text:      "something",
			category:  "\t ",
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewQuote(tt.text, tt.category)

			if tt.wantField != "" {
				require.Error(t, err)
				assert.True(t, IsValidation(err))

				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.wantField, validationErr.Field)
				assert.Equal(t, Quote{}, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollection_CloneIsIndependent(t *testing.T) {
	original := DefaultQuotes()
	clone := original.Clone()

	clone[0].Text = "changed"

	assert.Equal(t, "Success is a journey, not a destination.", original[0].Text)
	assert.NotNil(t, Collection(nil).Clone())
}

func TestCollection_Equal(t *testing.T) {
	a := DefaultQuotes()

	assert.True(t, a.Equal(DefaultQuotes()))
	assert.False(t, a.Equal(a[:2]))
	assert.False(t, a.Equal(Collection{a[1], a[0], a[2]}), "order matters")
	assert.True(t, Collection(nil).Equal(Collection{}))
}

func TestDefaultQuotes(t *testing.T) {
	defaults := DefaultQuotes()

	require.Len(t, defaults, 3)

	for _, q := range defaults {
		normalized, err := q.Normalize()
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(q, normalized), "defaults must already be normalized")
	}
}
