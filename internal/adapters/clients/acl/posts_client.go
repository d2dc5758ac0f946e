package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

const (
	// DefaultPostsPath is the collection path on the remote endpoint.
	DefaultPostsPath = "/posts"

	// maxListingBytes bounds a posts listing. The full jsonplaceholder
	// listing is about 27KB.
	maxListingBytes = 4 << 20

	// maxPublishResponseBytes bounds the echo returned by a publish.
	maxPublishResponseBytes = 64 << 10
)

var (
	_ ports.RemoteQuoteSource = (*PostsClient)(nil)
	_ ports.QuotePublisher    = (*PostsClient)(nil)
	_ ports.HealthChecker     = (*PostsClient)(nil)
)

// PostsClientConfig contains configuration for the posts client.
type PostsClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should be set to the remote endpoint root.
	Client *clients.Client

	// Path is the posts collection path. Defaults to DefaultPostsPath.
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// PostsClient reads snapshots from and publishes quotes to a
// jsonplaceholder-style posts endpoint.
type PostsClient struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

// NewPostsClient creates a new posts client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewPostsClient(cfg PostsClientConfig) *PostsClient {
	if cfg.Client == nil {
		panic("PostsClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPostsPath
	}

	return &PostsClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, "remote-quotes"),
		path:        path,
		logger:      logger,
	}
}

// publishedQuote is the body POSTed for a new quote.
type publishedQuote struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// FetchSnapshot returns the first limit posts in the order the remote serves
// them. Implements ports.RemoteQuoteSource.
func (c *PostsClient) FetchSnapshot(ctx context.Context, limit int) ([]ports.RemoteRecord, error) {
	path := c.path
	if limit > 0 {
		path += "?" + url.Values{"_limit": {strconv.Itoa(limit)}}.Encode()
	}

	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	body, err := c.Get(ctx, path, "fetch snapshot")
	if err != nil {
		return nil, err
	}

	data, err := ReadLimited(body, maxListingBytes, c.ServiceName())
	if err != nil {
		return nil, err
	}

	records, err := c.parseListing(data, limit)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched remote snapshot", slog.Int("records", len(records)))

	return records, nil
}

// parseListing translates a posts array. The remote may ignore _limit, so
// the listing is truncated here as well.
func (c *PostsClient) parseListing(data []byte, limit int) ([]ports.RemoteRecord, error) {
	if !gjson.ValidBytes(data) {
		return nil, domain.NewUnavailableError(c.ServiceName(), "malformed posts listing")
	}

	listing := gjson.ParseBytes(data)
	if !listing.IsArray() {
		return nil, domain.NewUnavailableError(c.ServiceName(),
			fmt.Sprintf("posts listing is %s, not an array", listing.Type))
	}

	items := listing.Array()
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	translated, err := TranslateSlice(items, translatePost)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	records := make([]ports.RemoteRecord, 0, len(translated))
	for _, r := range translated {
		records = append(records, *r)
	}

	return records, nil
}

// translatePost maps one post. Missing fields become zero values; only a
// non-object entry is an error.
func translatePost(item *gjson.Result) (*ports.RemoteRecord, error) {
	if !item.IsObject() {
		return nil, domain.NewValidationError("post", "expected an object, got "+item.Type.String())
	}

	return &ports.RemoteRecord{
		ID:     int(item.Get("id").Int()),
		UserID: int(item.Get("userId").Int()),
		Title:  item.Get("title").String(),
		Body:   item.Get("body").String(),
	}, nil
}

// Publish POSTs q to the posts endpoint. Implements ports.QuotePublisher.
func (c *PostsClient) Publish(ctx context.Context, q domain.Quote) error {
	if err := ValidateRequired(q.Text, "text"); err != nil {
		return err
	}

	if err := ValidateRequired(q.Category, "category"); err != nil {
		return err
	}

	payload, err := json.Marshal(publishedQuote{Text: q.Text, Category: q.Category})
	if err != nil {
		return fmt.Errorf("encoding quote: %w", err)
	}

	body, err := c.Post(ctx, c.path, bytes.NewReader(payload), "publish quote")
	if err != nil {
		return err
	}

	data, err := ReadLimited(body, maxPublishResponseBytes, c.ServiceName())
	if err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "published quote",
		slog.String("category", q.Category),
		slog.Int64("remote_id", gjson.GetBytes(data, "id").Int()),
	)

	return nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *PostsClient) Name() string {
	return c.ServiceName()
}

// Check fetches a single post to verify connectivity.
// Implements ports.HealthChecker.
func (c *PostsClient) Check(ctx context.Context) error {
	_, err := c.FetchSnapshot(ctx, 1)

	return err
}
