package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingPresenter records every render instruction.
type recordingPresenter struct {
	mu        sync.Mutex
	displayed []domain.Quote
	noQuotes  []string
	options   [][]domain.CategoryOption
	selected  []string
	prompts   []string
	hides     int
}

func (p *recordingPresenter) DisplayQuote(_ context.Context, q domain.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.displayed = append(p.displayed, q)
}

func (p *recordingPresenter) DisplayNoQuotesMessage(_ context.Context, category string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.noQuotes = append(p.noQuotes, category)
}

func (p *recordingPresenter) RenderCategoryOptions(_ context.Context, options []domain.CategoryOption, selected string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.options = append(p.options, options)
	p.selected = append(p.selected, selected)
}

func (p *recordingPresenter) ShowConflictPrompt(_ context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, message)
}

func (p *recordingPresenter) HideConflictPrompt(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hides++
}

func (p *recordingPresenter) lastDisplayed() (domain.Quote, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.displayed) == 0 {
		return domain.Quote{}, false
	}

	return p.displayed[len(p.displayed)-1], true
}

func (p *recordingPresenter) lastOptions() ([]domain.CategoryOption, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.options) == 0 {
		return nil, ""
	}

	return p.options[len(p.options)-1], p.selected[len(p.selected)-1]
}

func (p *recordingPresenter) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.prompts)
}

func (p *recordingPresenter) hideCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.hides
}

// testEnv wires a store over in-memory key-value stores.
type testEnv struct {
	durable     *memory.Store
	session     *memory.Store
	persistence *Persistence
	store       *QuoteStore
	presenter   *recordingPresenter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	durable := memory.New("durable")
	session := memory.New("session")
	persistence := NewPersistence(durable, session, discardLogger())

	return &testEnv{
		durable:     durable,
		session:     session,
		persistence: persistence,
		store:       NewQuoteStore(persistence, discardLogger()),
		presenter:   &recordingPresenter{},
	}
}

// storedQuotes decodes the durable copy of the collection.
func (e *testEnv) storedQuotes(t *testing.T) domain.Collection {
	t.Helper()

	raw, err := e.durable.Get(context.Background(), KeyQuotes)
	if err != nil {
		t.Fatalf("reading stored quotes: %v", err)
	}

	c, err := domain.ParseCollection([]byte(raw))
	if err != nil {
		t.Fatalf("parsing stored quotes: %v", err)
	}

	return c
}

// firstIndex always picks index 0.
func firstIndex(int) int { return 0 }
