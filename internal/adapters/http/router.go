package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds every /api/v1 request.
const DefaultRequestTimeout = 30 * time.Second

// Routes is what SetupRouter mounts. Nil handlers are skipped.
type Routes struct {
	Logger *slog.Logger

	// ServiceName labels request spans and metrics.
	ServiceName string

	// Auth guards the write routes when enabled.
	Auth *config.AuthConfig

	// Timeout applies to /api/v1 only; probes are never cut short.
	Timeout time.Duration

	Health *handlers.HealthHandler
	Quotes *handlers.QuoteHandler
	Sync   *handlers.SyncHandler
	View   *handlers.ViewHandler
}

// NewRoutes fills in the ambient parts of Routes. The caller adds the API
// handlers it has.
func NewRoutes(logger *slog.Logger, app *config.AppConfig, auth *config.AuthConfig, health *handlers.HealthHandler) Routes {
	return Routes{
		Logger:      logger,
		ServiceName: app.Name,
		Auth:        auth,
		Timeout:     DefaultRequestTimeout,
		Health:      health,
	}
}

// SetupRouter installs the middleware chain and every route on engine.
//
// Recovery runs first so a panic anywhere below still yields a JSON 500.
// The request logger and IDs come next so that telemetry and the access log
// can see them. Operational endpoints live under /-/; the quote API lives
// under /api/v1 where reads are public and writes may require a subject.
func SetupRouter(engine *gin.Engine, r Routes) {
	engine.Use(
		middleware.Recovery(r.Logger),
		middleware.ContextLogger(r.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(r.ServiceName)...)
	engine.Use(middleware.Logging(r.Logger))

	if r.Health != nil {
		r.Health.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api/v1")
	if r.Timeout > 0 {
		api.Use(middleware.Timeout(r.Timeout))
	}

	writes := api.Group("")
	if r.Auth != nil && r.Auth.Enabled {
		writes.Use(middleware.RequireAuth(r.Auth))
	}

	if r.Quotes != nil {
		r.Quotes.RegisterReadRoutes(api)
		r.Quotes.RegisterWriteRoutes(writes)
	}

	if r.Sync != nil {
		r.Sync.RegisterReadRoutes(api)
		r.Sync.RegisterWriteRoutes(writes)
	}

	if r.View != nil {
		r.View.RegisterRoutes(api)
	}
}
