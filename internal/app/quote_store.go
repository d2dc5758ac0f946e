package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// QuoteStore owns the authoritative in-memory collection.
// Every mutation saves the collection before returning (write-through). Saves
// are best-effort: a failed save is logged and the in-memory state stays
// authoritative.
type QuoteStore struct {
	mu          sync.RWMutex
	quotes      domain.Collection
	persistence *Persistence
	logger      *slog.Logger
}

// NewQuoteStore creates an empty store. Call Initialize before use.
func NewQuoteStore(persistence *Persistence, logger *slog.Logger) *QuoteStore {
	if persistence == nil {
		panic("QuoteStore: persistence is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteStore{
		quotes:      domain.Collection{},
		persistence: persistence,
		logger:      logger,
	}
}

// Initialize loads the saved collection, falling back to the default set when
// nothing usable is stored. It never fails.
func (s *QuoteStore) Initialize(ctx context.Context) domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, ok := s.persistence.LoadQuotes(ctx)
	if !ok {
		s.logger.InfoContext(ctx, "no saved quotes, using defaults")

		loaded = domain.DefaultQuotes()
	}

	s.quotes = loaded

	s.logger.DebugContext(ctx, "quote store initialized", slog.Int("count", len(loaded)))

	return s.quotes.Clone()
}

// Add validates and appends a single quote, then saves.
// Returns a ValidationError when the trimmed text or category is empty; the
// collection is untouched in that case.
func (s *QuoteStore) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)
	s.saveLocked(ctx)

	return q, nil
}

// ReplaceAll installs a copy of c as the collection, then saves.
func (s *QuoteStore) ReplaceAll(ctx context.Context, c domain.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = c.Clone()
	s.saveLocked(ctx)
}

// BulkAppend validates every item, appends them in order, then saves.
// All items are checked before anything changes: one invalid item rejects the
// whole batch with a ValidationError naming its index.
func (s *QuoteStore) BulkAppend(ctx context.Context, items domain.Collection) (int, error) {
	normalized, err := normalizeAll(items)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, normalized...)
	s.saveLocked(ctx)

	return len(normalized), nil
}

// Save re-saves the current collection without changing it.
func (s *QuoteStore) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveLocked(ctx)
}

// Reload replaces the in-memory collection with the durable copy after an
// external change. Nothing is saved. Returns true when the collection changed.
// An unreadable durable copy is ignored and the current collection kept.
func (s *QuoteStore) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, ok := s.persistence.LoadQuotes(ctx)
	if !ok || loaded.Equal(s.quotes) {
		return false
	}

	s.quotes = loaded

	s.logger.InfoContext(ctx, "quotes reloaded from storage", slog.Int("count", len(loaded)))

	return true
}

// Serialize renders the collection as pretty-printed JSON.
func (s *QuoteStore) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.MarshalCollection(s.quotes)
}

// Snapshot returns an independent copy of the collection.
func (s *QuoteStore) Snapshot() domain.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.quotes.Clone()
}

// Len returns the number of quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// saveLocked persists the collection. Callers must hold s.mu.
func (s *QuoteStore) saveLocked(ctx context.Context) {
	if err := s.persistence.SaveQuotes(ctx, s.quotes); err != nil {
		s.logger.WarnContext(ctx, "saving quotes failed, keeping in-memory state",
			slog.Int("count", len(s.quotes)),
			slog.Any("error", err),
		)
	}
}
