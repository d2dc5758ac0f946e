package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/platform/metrics"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

func serveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the sync agent",
		Long: `Serve the quote API under /api/v1 and health endpoints under /-/.
The sync agent compares the collection with the remote endpoint on every
interval, and with storage.watch the collection is reloaded when another
process changes the storage file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) (err error) {
	// 1. Load and validate configuration (fail fast)
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// 2. Initialize logging
	logger := newLogger(cfg, opts.out)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Backend),
	)

	// 3. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 4. Open storage
	c, err := openCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeWith(c, &err)

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(c.durable, ports.Critical); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	// 5. Remote endpoint (ACL) for sync and publishing
	view := presenter.NewViewModel(presenter.WithLogger(logger))
	deps := serviceDeps{presenter: view}

	if cfg.Sync.Enabled || cfg.Remote.Publish {
		remote, err := newRemote(cfg, logger, Version)
		if err != nil {
			return err
		}

		if err := healthRegistry.Register(remote, ports.Degrading); err != nil {
			return fmt.Errorf("registering remote health check: %w", err)
		}

		if cfg.Remote.Publish {
			deps.publisher = remote
		}

		if cfg.Sync.Enabled {
			syncMetrics, err := metrics.NewSync(prometheus.DefaultRegisterer)
			if err != nil {
				return fmt.Errorf("registering sync metrics: %w", err)
			}

			deps.sync = c.newSyncAgent(remote, view, syncMetrics)
		}
	}

	// 6. Application service
	service := c.newService(deps)
	defer service.Close()

	service.Start(ctx)

	// 7. Handlers, server and router
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo,
		handlers.WithGatherer(prometheus.DefaultGatherer))

	server := http.New(&cfg.Server, logger)

	routes := http.NewRoutes(logger, &cfg.App, &cfg.Auth, healthHandler)
	routes.Quotes = handlers.NewQuoteHandler(service)
	routes.Sync = handlers.NewSyncHandler(service)
	routes.View = handlers.NewViewHandler(view, "/api/v1/quotes")
	http.SetupRouter(server.Engine(), routes)

	// 8. Reload on external changes when the backend can report them
	var watch func(context.Context) error

	if cfg.Storage.Watch {
		if w, ok := c.durable.(storage.Watcher); ok {
			watch = func(ctx context.Context) error {
				return w.Watch(ctx, service.HandleExternalChange)
			}
		} else {
			logger.Warn("storage backend cannot watch for changes", slog.String("backend", cfg.Storage.Backend))
		}
	}

	// 9. Run until a signal cancels ctx or a component fails
	return supervise(ctx, logger, server, cfg.Server.ShutdownTimeout, deps.sync, watch)
}

// supervise runs the server, the sync agent and the storage watcher until ctx
// is cancelled or one of them fails. agent and watch may be nil.
func supervise(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	shutdownTimeout time.Duration,
	agent *app.SyncAgent,
	watch func(context.Context) error,
) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx, shutdownTimeout)
	})

	if agent != nil {
		g.Go(func() error {
			return agent.Run(gctx)
		})
	}

	if watch != nil {
		g.Go(func() error {
			return watch(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
