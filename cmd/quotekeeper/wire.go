package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/platform/metrics"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// loadConfig loads and validates configuration (fail fast).
func loadConfig(opts *options) (*config.Config, error) {
	profile := opts.profile
	if profile == "" {
		profile = os.Getenv("APP_ENVIRONMENT")
	}

	if profile == "" {
		profile = "local"
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Profile: profile,
		Dir:     opts.configDir,
		File:    opts.configFile,
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newLogger builds the process logger writing to w.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
}

// core is what every command needs: config, logger, the two stores and the
// quote store on top of them.
type core struct {
	cfg         *config.Config
	logger      *slog.Logger
	durable     storage.Durable
	persistence *app.Persistence
	store       *app.QuoteStore
}

// openCore opens the durable store. Callers must Close the result.
func openCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*core, error) {
	durable, err := storage.Open(ctx, storage.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	persistence := app.NewPersistence(durable, memory.New("session"), logger)

	return &core{
		cfg:         cfg,
		logger:      logger,
		durable:     durable,
		persistence: persistence,
		store:       app.NewQuoteStore(persistence, logger),
	}, nil
}

// Close releases the durable store.
func (c *core) Close() error {
	if err := c.durable.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}

	return nil
}

// serviceDeps are the optional collaborators of a QuoteService.
type serviceDeps struct {
	presenter ports.Presenter
	publisher ports.QuotePublisher
	sync      *app.SyncAgent
}

// newService builds the quote service over the core's stores.
func (c *core) newService(deps serviceDeps) *app.QuoteService {
	return app.NewQuoteService(app.QuoteServiceConfig{
		Store:       c.store,
		Persistence: c.persistence,
		Picker:      app.NewRandomPicker(),
		Presenter:   deps.presenter,
		Publisher:   deps.publisher,
		Sync:        deps.sync,
		Logger:      c.logger,
	})
}

// newRemote creates the HTTP client and the posts adapter in front of it.
func newRemote(cfg *config.Config, logger *slog.Logger, version string) (*acl.PostsClient, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Remote.BaseURL,
		ServiceName: cfg.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   cfg.App.Name + "/" + version,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewPostsClient(acl.PostsClientConfig{
		Client: httpClient,
		Path:   cfg.Remote.PostsPath,
		Logger: logger,
	}), nil
}

// newSyncAgent creates the agent from the sync section. m may be nil.
func (c *core) newSyncAgent(source ports.RemoteQuoteSource, presenter ports.Presenter, m *metrics.Sync) *app.SyncAgent {
	return app.NewSyncAgent(app.SyncAgentConfig{
		Store:            c.store,
		Source:           source,
		Presenter:        presenter,
		Metrics:          m,
		Logger:           c.logger,
		Interval:         c.cfg.Sync.Interval,
		FetchTimeout:     c.cfg.Sync.FetchTimeout,
		SnapshotSize:     c.cfg.Sync.SnapshotSize,
		SuppressRejected: c.cfg.Sync.SuppressRejected,
	})
}

// closeWith closes c and joins any error into err.
func closeWith(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, cerr)
	}
}
