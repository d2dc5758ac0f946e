//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients/acl"
	httpAdapter "github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// post is one entry served by a fakeRemote.
type post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// fakeRemote is a jsonplaceholder-style posts endpoint whose listing can be
// changed while it runs.
type fakeRemote struct {
	*httptest.Server

	mu        sync.Mutex
	posts     []post
	status    int
	published []map[string]string
}

func newFakeRemote() *fakeRemote {
	r := &fakeRemote{status: http.StatusOK}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))

	return r
}

func (r *fakeRemote) serve(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != http.StatusOK {
		w.WriteHeader(r.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch req.Method {
	case http.MethodGet:
		_ = json.NewEncoder(w).Encode(r.posts)
	case http.MethodPost:
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.published = append(r.published, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// setTitles replaces the listing with one post per title.
func (r *fakeRemote) setTitles(titles ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts = r.posts[:0]
	for i, title := range titles {
		r.posts = append(r.posts, post{UserID: 1, ID: i + 1, Title: title, Body: "body"})
	}
}

func (r *fakeRemote) setStatus(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = code
}

func (r *fakeRemote) publishedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.published)
}

// stack is the full service, served over HTTP on top of a sqlite store and a
// fake remote.
type stack struct {
	*httptest.Server

	remote  *fakeRemote
	durable storage.Durable
	service *app.QuoteService
}

// stackOptions tune newStack.
type stackOptions struct {
	// dir holds the sqlite database. Reusing a dir reopens the same data.
	dir string

	// auth guards the write routes when enabled.
	auth config.AuthConfig

	// publish sends every added quote to the remote.
	publish bool
}

// newStack wires the service the way the serve command does.
func newStack(ctx context.Context, remote *fakeRemote, opts stackOptions) (*stack, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	durable, err := storage.Open(ctx, storage.Config{
		Backend: storage.BackendSQLite,
		Path:    filepath.Join(opts.dir, "quotes.db"),
	}, logger)
	if err != nil {
		return nil, err
	}

	client, err := clients.New(remoteConfig(remote.URL))
	if err != nil {
		_ = durable.Close()
		return nil, err
	}

	posts := acl.NewPostsClient(acl.PostsClientConfig{Client: client, Logger: logger})

	registry := ports.NewHealthRegistry()
	_ = registry.Register(durable, ports.Critical)
	_ = registry.Register(posts, ports.Degrading)

	persistence := app.NewPersistence(durable, memory.New("session"), logger)
	store := app.NewQuoteStore(persistence, logger)
	view := presenter.NewViewModel(presenter.WithLogger(logger))

	agent := app.NewSyncAgent(app.SyncAgentConfig{
		Store:     store,
		Source:    posts,
		Presenter: view,
		Logger:    logger,
		Interval:  time.Hour,
	})

	var publisher ports.QuotePublisher
	if opts.publish {
		publisher = posts
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Persistence: persistence,
		Picker:      app.NewRandomPicker(),
		Presenter:   view,
		Publisher:   publisher,
		Sync:        agent,
		Logger:      logger,
	})
	service.Start(ctx)

	engine := gin.New()

	routes := httpAdapter.NewRoutes(logger,
		&config.AppConfig{Name: "quotekeeper", Environment: "test"},
		&opts.auth,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "unknown")),
	)
	routes.Quotes = handlers.NewQuoteHandler(service)
	routes.Sync = handlers.NewSyncHandler(service)
	routes.View = handlers.NewViewHandler(view, "/api/v1/quotes")
	httpAdapter.SetupRouter(engine, routes)

	return &stack{
		Server:  httptest.NewServer(engine),
		remote:  remote,
		durable: durable,
		service: service,
	}, nil
}

// Close stops the server, waits for publishes and closes the store.
func (s *stack) Close() {
	s.Server.Close()
	s.service.Close()
	_ = s.durable.Close()
}

// remoteConfig is a fast-failing client configuration for the fake remote.
func remoteConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "remote-quotes",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       200 * time.Millisecond,
			HalfOpenLimit: 1,
		},
	}
}
