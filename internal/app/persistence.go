package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Storage keys. These are part of the on-disk format; changing them orphans
// previously saved data.
const (
	KeyQuotes       = "quotes"
	KeyLastCategory = "lastCategoryFilter"
	KeyLastViewed   = "lastViewedQuote"
)

// Persistence maps typed values onto the durable and session key-value stores.
type Persistence struct {
	durable ports.KeyValueStore
	session ports.KeyValueStore
	logger  *slog.Logger
}

// NewPersistence creates a persistence adapter over the given stores.
func NewPersistence(durable, session ports.KeyValueStore, logger *slog.Logger) *Persistence {
	if durable == nil || session == nil {
		panic("Persistence: durable and session stores are required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Persistence{durable: durable, session: session, logger: logger}
}

// SaveQuotes overwrites the durable copy of the collection.
func (p *Persistence) SaveQuotes(ctx context.Context, c domain.Collection) error {
	data, err := domain.MarshalCollection(c)
	if err != nil {
		return err
	}

	if err := p.durable.Set(ctx, KeyQuotes, string(data)); err != nil {
		return fmt.Errorf("saving quotes: %w", err)
	}

	return nil
}

// LoadQuotes returns the durable copy of the collection.
// Records that fail validation are dropped one by one so the valid ones
// survive the next save. The boolean is false when nothing is stored, the
// value does not parse, or no stored record is valid. The reason is logged;
// callers only decide what to fall back to.
func (p *Persistence) LoadQuotes(ctx context.Context) (domain.Collection, bool) {
	raw, err := p.durable.Get(ctx, KeyQuotes)
	if err != nil {
		if !domain.IsNotFound(err) {
			p.logger.WarnContext(ctx, "reading stored quotes failed", slog.Any("error", err))
		}

		return nil, false
	}

	c, err := domain.ParseCollection([]byte(raw))
	if err != nil {
		p.logger.WarnContext(ctx, "stored quotes are unreadable", slog.Any("error", err))

		return nil, false
	}

	kept := make(domain.Collection, 0, len(c))

	for i, q := range c {
		normalized, err := q.Normalize()
		if err != nil {
			p.logger.WarnContext(ctx, "dropping invalid stored quote", slog.Int("index", i), slog.Any("error", err))

			continue
		}

		kept = append(kept, normalized)
	}

	if len(c) > 0 && len(kept) == 0 {
		p.logger.WarnContext(ctx, "no stored quote is valid", slog.Int("records", len(c)))

		return nil, false
	}

	return kept, true
}

// SaveLastCategory stores the category filter preference.
func (p *Persistence) SaveLastCategory(ctx context.Context, category string) error {
	if err := p.durable.Set(ctx, KeyLastCategory, category); err != nil {
		return fmt.Errorf("saving category preference: %w", err)
	}

	return nil
}

// LoadLastCategory returns the stored category preference, or "all".
func (p *Persistence) LoadLastCategory(ctx context.Context) string {
	category, err := p.durable.Get(ctx, KeyLastCategory)
	if err != nil {
		if !domain.IsNotFound(err) {
			p.logger.WarnContext(ctx, "reading category preference failed", slog.Any("error", err))
		}

		return domain.CategoryAll
	}

	category = domain.NormalizeCategory(category)
	if category == "" {
		return domain.CategoryAll
	}

	return category
}

// SaveLastViewed records q as the most recently displayed quote for this session.
func (p *Persistence) SaveLastViewed(ctx context.Context, q domain.Quote) error {
	data, err := domain.MarshalQuote(q)
	if err != nil {
		return err
	}

	if err := p.session.Set(ctx, KeyLastViewed, string(data)); err != nil {
		return fmt.Errorf("saving last viewed quote: %w", err)
	}

	return nil
}

// LoadLastViewed returns the most recently displayed quote of this session.
func (p *Persistence) LoadLastViewed(ctx context.Context) (domain.Quote, bool) {
	raw, err := p.session.Get(ctx, KeyLastViewed)
	if err != nil {
		return domain.Quote{}, false
	}

	q, err := domain.ParseQuote([]byte(raw))
	if err != nil {
		p.logger.WarnContext(ctx, "last viewed quote is unreadable", slog.Any("error", err))

		return domain.Quote{}, false
	}

	return q, true
}

// normalizeAll normalizes every quote of c, failing on the first invalid one.
// The error names the offending index so imports can point at it.
func normalizeAll(c domain.Collection) (domain.Collection, error) {
	out := make(domain.Collection, 0, len(c))

	for i, q := range c {
		normalized, err := q.Normalize()
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				return nil, domain.NewValidationErrorWithValue(fmt.Sprintf("quotes[%d].%s", i, ve.Field), ve.Message, q)
			}

			return nil, err
		}

		out = append(out, normalized)
	}

	return out, nil
}
