package presenter

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// NoQuotesMessage is shown when the selected category has no quotes.
const NoQuotesMessage = "No quotes available for this category."

var _ ports.Presenter = (*ViewModel)(nil)

// QuoteDisplay is the quote area. Exactly one of Quote and Message is set.
type QuoteDisplay struct {
	Quote    *domain.Quote `json:"quote,omitempty"`
	Message  string        `json:"message,omitempty"`
	Category string        `json:"category,omitempty"`
}

// CategorySelect is the category filter control.
type CategorySelect struct {
	Options  []domain.CategoryOption `json:"options"`
	Selected string                  `json:"selected"`
}

// ConflictPrompt is the sync notification with its two choices.
type ConflictPrompt struct {
	Visible bool     `json:"visible"`
	Message string   `json:"message,omitempty"`
	Actions []string `json:"actions,omitempty"`
}

// View is a point-in-time copy of the view model.
type View struct {
	Display   QuoteDisplay   `json:"display"`
	Filter    CategorySelect `json:"filter"`
	Conflict  ConflictPrompt `json:"conflict"`
	Revision  uint64         `json:"revision"`
	UpdatedAt time.Time      `json:"updatedAt,omitzero"`
}

// ViewModel implements ports.Presenter by recording render instructions.
// It is safe for concurrent use.
type ViewModel struct {
	mu     sync.RWMutex
	view   View
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithClock overrides time.Now for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) {
		vm.now = now
	}
}

// WithLogger sets the logger used for render tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(vm *ViewModel) {
		vm.logger = logger
	}
}

// NewViewModel returns an empty view with the "all" filter selected.
func NewViewModel(opts ...Option) *ViewModel {
	vm := &ViewModel{
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.view.Filter = CategorySelect{
		Options:  domain.CategoryOptions(nil),
		Selected: domain.CategoryAll,
	}

	return vm
}

// DisplayQuote shows q in the quote area.
func (vm *ViewModel) DisplayQuote(ctx context.Context, q domain.Quote) {
	vm.update(ctx, "display_quote", func(v *View) {
		v.Display = QuoteDisplay{Quote: &q, Category: q.Category}
	})
}

// DisplayNoQuotesMessage replaces the quote area with NoQuotesMessage.
func (vm *ViewModel) DisplayNoQuotesMessage(ctx context.Context, category string) {
	vm.update(ctx, "display_no_quotes", func(v *View) {
		v.Display = QuoteDisplay{Message: NoQuotesMessage, Category: category}
	})
}

// RenderCategoryOptions replaces the filter options.
func (vm *ViewModel) RenderCategoryOptions(ctx context.Context, options []domain.CategoryOption, selected string) {
	vm.update(ctx, "render_categories", func(v *View) {
		v.Filter = CategorySelect{Options: slices.Clone(options), Selected: selected}
	})
}

// ShowConflictPrompt makes the sync notification visible.
func (vm *ViewModel) ShowConflictPrompt(ctx context.Context, message string) {
	vm.update(ctx, "show_conflict", func(v *View) {
		v.Conflict = ConflictPrompt{
			Visible: true,
			Message: message,
			Actions: []string{ActionAcceptRemote, ActionKeepLocal},
		}
	})
}

// HideConflictPrompt hides the sync notification.
func (vm *ViewModel) HideConflictPrompt(ctx context.Context) {
	vm.update(ctx, "hide_conflict", func(v *View) {
		v.Conflict = ConflictPrompt{}
	})
}

// Snapshot returns a copy of the current view.
func (vm *ViewModel) Snapshot() View {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	v := vm.view
	if v.Display.Quote != nil {
		q := *v.Display.Quote
		v.Display.Quote = &q
	}

	v.Filter.Options = slices.Clone(v.Filter.Options)
	v.Conflict.Actions = slices.Clone(v.Conflict.Actions)

	return v
}

func (vm *ViewModel) update(ctx context.Context, instruction string, apply func(*View)) {
	vm.mu.Lock()
	apply(&vm.view)
	vm.view.Revision++
	vm.view.UpdatedAt = vm.now()
	revision := vm.view.Revision
	vm.mu.Unlock()

	vm.logger.DebugContext(ctx, "view updated",
		slog.String("instruction", instruction),
		slog.Uint64("revision", revision),
	)
}
