package ports

import (
	"context"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// Presenter receives render instructions from the application layer.
// Implementations own whatever the user actually sees (a view model served
// over HTTP, lines on a terminal). Methods never fail: a presenter that cannot
// render logs the problem itself.
type Presenter interface {
	// DisplayQuote shows q as the current quote.
	DisplayQuote(ctx context.Context, q domain.Quote)

	// DisplayNoQuotesMessage reports that nothing matches category.
	DisplayNoQuotesMessage(ctx context.Context, category string)

	// RenderCategoryOptions replaces the category filter choices.
	// selected is the value that should appear chosen.
	RenderCategoryOptions(ctx context.Context, options []domain.CategoryOption, selected string)

	// ShowConflictPrompt asks the user to choose between local and remote data.
	ShowConflictPrompt(ctx context.Context, message string)

	// HideConflictPrompt dismisses a previously shown conflict prompt.
	HideConflictPrompt(ctx context.Context)
}
