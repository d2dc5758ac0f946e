// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// ExportFilename is the suggested name of an exported collection.
const ExportFilename = "quotes.json"

// DefaultPublishTimeout bounds the best-effort publish after a quote is added.
const DefaultPublishTimeout = 5 * time.Second

// MaxImportSize caps the size of an imported document.
const MaxImportSize = 1 << 20

// importSchema describes an importable document: an array of quote-shaped objects.
// Empty strings pass the schema and are rejected later by normalization, so
// the error names the offending field.
const importSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text", "category"],
    "properties": {
      "text": {"type": "string"},
      "category": {"type": "string"}
    }
  }
}`

var compiledImportSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(importSchema))
})

// QuoteService receives the user's actions and issues render instructions.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	store          *QuoteStore
	persistence    *Persistence
	picker         *RandomPicker
	presenter      ports.Presenter
	publisher      ports.QuotePublisher
	sync           *SyncAgent
	logger         *slog.Logger
	publishTimeout time.Duration
	publishes      sync.WaitGroup
}

// QuoteServiceConfig contains the dependencies of the quote service.
// Publisher and Sync are optional.
type QuoteServiceConfig struct {
	Store          *QuoteStore
	Persistence    *Persistence
	Picker         *RandomPicker
	Presenter      ports.Presenter
	Publisher      ports.QuotePublisher
	Sync           *SyncAgent
	Logger         *slog.Logger
	PublishTimeout time.Duration
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil || cfg.Persistence == nil || cfg.Presenter == nil {
		panic("QuoteService: Store, Persistence and Presenter are required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Picker == nil {
		cfg.Picker = NewRandomPicker()
	}

	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}

	return &QuoteService{
		store:          cfg.Store,
		persistence:    cfg.Persistence,
		picker:         cfg.Picker,
		presenter:      cfg.Presenter,
		publisher:      cfg.Publisher,
		sync:           cfg.Sync,
		logger:         cfg.Logger,
		publishTimeout: cfg.PublishTimeout,
	}
}

// Start loads the collection, renders the category filter with the saved
// preference selected and shows a first random quote.
func (s *QuoteService) Start(ctx context.Context) {
	n := s.Load(ctx)

	s.logger.InfoContext(ctx, "quote service started", slog.Int("count", n))

	s.renderCategories(ctx)
	s.RequestRandomQuote(ctx)
}

// Load initializes the collection from storage, or the defaults, without
// rendering. One-shot commands use it in place of Start.
func (s *QuoteService) Load(ctx context.Context) int {
	return len(s.store.Initialize(ctx))
}

// RequestRandomQuote shows a random quote from the saved category.
// Returns false, after telling the presenter, when nothing matches.
func (s *QuoteService) RequestRandomQuote(ctx context.Context) (domain.Quote, bool) {
	category := s.persistence.LoadLastCategory(ctx)

	q, ok := s.picker.Pick(domain.FilterByCategory(s.store.Snapshot(), category))
	if !ok {
		s.logger.DebugContext(ctx, "no quotes in category", slog.String("category", category))
		s.presenter.DisplayNoQuotesMessage(ctx, category)

		return domain.Quote{}, false
	}

	s.presenter.DisplayQuote(ctx, q)

	if err := s.persistence.SaveLastViewed(ctx, q); err != nil {
		s.logger.WarnContext(ctx, "saving last viewed quote failed", slog.Any("error", err))
	}

	return q, true
}

// SubmitNewQuote adds a quote, refreshes the view and starts publishing the
// quote to the remote endpoint. It returns without waiting for the publish,
// whose failures are logged only.
func (s *QuoteService) SubmitNewQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := s.store.Add(ctx, text, category)
	if err != nil {
		s.logger.InfoContext(ctx, "quote rejected", slog.Any("error", err))

		return domain.Quote{}, err
	}

	s.logger.InfoContext(ctx, "quote added", slog.String("category", q.Category))

	s.renderCategories(ctx)
	s.RequestRandomQuote(ctx)
	s.publish(ctx, q)

	return q, nil
}

// publish outlives the request that added q, bounded by publishTimeout.
func (s *QuoteService) publish(ctx context.Context, q domain.Quote) {
	if s.publisher == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	s.publishes.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()

		if err := s.publisher.Publish(ctx, q); err != nil {
			s.logger.WarnContext(ctx, "publishing quote failed", slog.Any("error", err))

			return
		}

		s.logger.DebugContext(ctx, "quote published")
	})
}

// Close waits for publishes still in flight. Call it once nothing submits
// quotes any more.
func (s *QuoteService) Close() {
	s.publishes.Wait()
}

// ChangeCategoryFilter saves the category preference and shows a random quote
// from it. An empty value selects every category.
func (s *QuoteService) ChangeCategoryFilter(ctx context.Context, value string) string {
	category := domain.NormalizeCategory(value)
	if category == "" {
		category = domain.CategoryAll
	}

	if err := s.persistence.SaveLastCategory(ctx, category); err != nil {
		s.logger.WarnContext(ctx, "saving category preference failed", slog.Any("error", err))
	}

	quotes := s.store.Snapshot()
	if !domain.HasCategory(quotes, category) {
		s.logger.DebugContext(ctx, "filter selects no quotes", slog.String("category", category))
	}

	s.presenter.RenderCategoryOptions(ctx, domain.CategoryOptions(quotes), category)
	s.RequestRandomQuote(ctx)

	return category
}

// Export returns the suggested filename and the pretty-printed collection.
func (s *QuoteService) Export(ctx context.Context) (string, []byte, error) {
	data, err := s.store.Serialize()
	if err != nil {
		return "", nil, fmt.Errorf("exporting quotes: %w", err)
	}

	s.logger.DebugContext(ctx, "quotes exported", slog.Int("bytes", len(data)))

	return ExportFilename, data, nil
}

// Import appends the quotes of an exported document.
// Malformed JSON is a ParseError. Well-formed JSON that is not an array of
// quote-shaped records, or any record with an empty field, is a
// ValidationError. Nothing changes on failure.
func (s *QuoteService) Import(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return 0, fmt.Errorf("reading import: %w", err)
	}

	if len(data) > MaxImportSize {
		return 0, domain.NewValidationError("file", fmt.Sprintf("must not exceed %d bytes", MaxImportSize))
	}

	write := StagedWrite[domain.Collection]{
		Name:  "import_quotes",
		Check: validateImport,
		Parse: func(_ context.Context, doc []byte) (domain.Collection, error) {
			return domain.ParseCollection(doc)
		},
		Normalize: func(_ context.Context, parsed domain.Collection) (domain.Collection, error) {
			return normalizeAll(parsed)
		},
		Commit: func(ctx context.Context, normalized domain.Collection) error {
			_, err := s.store.BulkAppend(ctx, normalized)

			return err
		},
	}

	imported, err := write.Run(ctx, s.logger, data)
	if err != nil {
		return 0, err
	}

	s.renderCategories(ctx)
	s.RequestRandomQuote(ctx)

	return len(imported), nil
}

func validateImport(_ context.Context, data []byte) error {
	if !json.Valid(data) {
		return domain.NewParseError("import", "invalid JSON")
	}

	schema, err := compiledImportSchema()
	if err != nil {
		return fmt.Errorf("compiling import schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.NewParseErrorWithCause("import", "unreadable document", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}

	return domain.NewValidationErrorWithValue("quotes", "expected an array of {text, category} records", strings.Join(problems, "; "))
}

// AcceptRemote resolves the pending conflict in favour of the remote data.
func (s *QuoteService) AcceptRemote(ctx context.Context) error {
	if s.sync == nil {
		return domain.NewUnavailableError("sync", "disabled")
	}

	if err := s.sync.AcceptRemote(ctx); err != nil {
		return err
	}

	s.renderCategories(ctx)
	s.RequestRandomQuote(ctx)

	return nil
}

// KeepLocal resolves the pending conflict in favour of the local data.
func (s *QuoteService) KeepLocal(ctx context.Context) error {
	if s.sync == nil {
		return domain.NewUnavailableError("sync", "disabled")
	}

	if err := s.sync.KeepLocal(ctx); err != nil {
		return err
	}

	s.renderCategories(ctx)

	return nil
}

// SyncNow runs one sync cycle and returns the resulting status.
// A failed fetch is reported as an UnavailableError.
func (s *QuoteService) SyncNow(ctx context.Context) (SyncStatus, error) {
	if s.sync == nil {
		return SyncStatus{}, domain.NewUnavailableError("sync", "disabled")
	}

	if _, err := s.sync.SyncNow(ctx); err != nil {
		if domain.IsUnavailable(err) {
			return s.sync.Status(), err
		}

		return s.sync.Status(), domain.NewUnavailableError("remote-quotes", err.Error())
	}

	return s.sync.Status(), nil
}

// SyncStatus reports the sync agent's status.
func (s *QuoteService) SyncStatus() (SyncStatus, error) {
	if s.sync == nil {
		return SyncStatus{}, domain.NewUnavailableError("sync", "disabled")
	}

	return s.sync.Status(), nil
}

// HandleExternalChange reloads the collection after the durable store was
// modified by another process and refreshes the view when it changed.
func (s *QuoteService) HandleExternalChange(ctx context.Context) {
	if !s.store.Reload(ctx) {
		return
	}

	s.renderCategories(ctx)
	s.RequestRandomQuote(ctx)
}

// ListQuotes returns the quotes of category, in insertion order.
func (s *QuoteService) ListQuotes(_ context.Context, category string) domain.Collection {
	if strings.TrimSpace(category) == "" {
		category = domain.CategoryAll
	}

	return domain.FilterByCategory(s.store.Snapshot(), category)
}

// Categories returns the category options and the saved preference.
func (s *QuoteService) Categories(ctx context.Context) ([]domain.CategoryOption, string) {
	return domain.CategoryOptions(s.store.Snapshot()), s.persistence.LoadLastCategory(ctx)
}

// LastViewed returns the most recently displayed quote of this session.
func (s *QuoteService) LastViewed(ctx context.Context) (domain.Quote, error) {
	q, ok := s.persistence.LoadLastViewed(ctx)
	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("quote", KeyLastViewed)
	}

	return q, nil
}

func (s *QuoteService) renderCategories(ctx context.Context) {
	options, selected := s.Categories(ctx)
	s.presenter.RenderCategoryOptions(ctx, options, selected)
}
