// Package cli renders quotekeeper output on a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

var _ ports.Presenter = (*Presenter)(nil)

// Show selects which render instructions a Presenter writes.
type Show uint8

const (
	// ShowQuotes writes displayed quotes and the no-quotes message.
	ShowQuotes Show = 1 << iota

	// ShowCategories writes the category filter.
	ShowCategories

	// ShowConflicts writes conflict prompts and their dismissal.
	ShowConflicts

	// ShowAll writes everything.
	ShowAll = ShowQuotes | ShowCategories | ShowConflicts
)

// Presenter writes render instructions as plain lines. A one-shot command
// picks the instructions it cares about, since the service also re-renders
// parts of the view the command did not ask for.
type Presenter struct {
	mu   sync.Mutex
	out  io.Writer
	show Show
}

// NewPresenter returns a Presenter writing the selected instructions to out.
func NewPresenter(out io.Writer, show Show) *Presenter {
	return &Presenter{out: out, show: show}
}

// DisplayQuote implements ports.Presenter.
func (p *Presenter) DisplayQuote(_ context.Context, q domain.Quote) {
	if p.show&ShowQuotes == 0 {
		return
	}

	p.printf("%q\n  (%s)\n", q.Text, q.Category)
}

// DisplayNoQuotesMessage implements ports.Presenter.
func (p *Presenter) DisplayNoQuotesMessage(_ context.Context, _ string) {
	if p.show&ShowQuotes == 0 {
		return
	}

	p.printf("%s\n", presenter.NoQuotesMessage)
}

// RenderCategoryOptions implements ports.Presenter.
func (p *Presenter) RenderCategoryOptions(_ context.Context, options []domain.CategoryOption, selected string) {
	if p.show&ShowCategories == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	WriteCategories(p.out, options, selected)
}

// ShowConflictPrompt implements ports.Presenter.
func (p *Presenter) ShowConflictPrompt(_ context.Context, message string) {
	if p.show&ShowConflicts == 0 {
		return
	}

	p.printf("%s\nRun with --accept to take the server data or --keep to keep yours.\n", message)
}

// HideConflictPrompt implements ports.Presenter.
func (p *Presenter) HideConflictPrompt(context.Context) {
	if p.show&ShowConflicts == 0 {
		return
	}

	p.printf("Conflict resolved.\n")
}

func (p *Presenter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, format, args...)
}

// WriteCategories writes one option per line, marking the selected one.
func WriteCategories(w io.Writer, options []domain.CategoryOption, selected string) {
	var b strings.Builder

	for _, o := range options {
		marker := "  "
		if o.Value == selected {
			marker = "* "
		}

		fmt.Fprintf(&b, "%s%-16s %s\n", marker, o.Value, o.Label)
	}

	_, _ = io.WriteString(w, b.String())
}
