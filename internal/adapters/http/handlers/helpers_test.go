package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// fixture is a started quote service over in-memory stores, served by a
// gin engine with every quote, sync and view route registered.
type fixture struct {
	engine  *gin.Engine
	service *app.QuoteService
	store   *app.QuoteStore
	durable *memory.Store
	view    *presenter.ViewModel
	agent   *app.SyncAgent
}

// newFixture builds a fixture. A nil source disables sync.
func newFixture(t *testing.T, source ports.RemoteQuoteSource) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	durable := memory.New("durable")
	persistence := app.NewPersistence(durable, memory.New("session"), logger)
	store := app.NewQuoteStore(persistence, logger)
	view := presenter.NewViewModel(presenter.WithLogger(logger))

	var agent *app.SyncAgent
	if source != nil {
		agent = app.NewSyncAgent(app.SyncAgentConfig{
			Store:     store,
			Source:    source,
			Presenter: view,
			Logger:    logger,
		})
	}

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       store,
		Persistence: persistence,
		Picker:      app.NewRandomPickerWithSource(func(int) int { return 0 }),
		Presenter:   view,
		Sync:        agent,
		Logger:      logger,
	})
	service.Start(context.Background())

	engine := gin.New()
	api := engine.Group("/api/v1")

	quotes := NewQuoteHandler(service)
	quotes.RegisterReadRoutes(api)
	quotes.RegisterWriteRoutes(api)

	syncHandler := NewSyncHandler(service)
	syncHandler.RegisterReadRoutes(api)
	syncHandler.RegisterWriteRoutes(api)

	NewViewHandler(view, "/api/v1/quotes").RegisterRoutes(api)

	return &fixture{
		engine:  engine,
		service: service,
		store:   store,
		durable: durable,
		view:    view,
		agent:   agent,
	}
}

// do sends a request with an optional JSON body and returns the recorder.
func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody

	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)

			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

// decode unmarshals a recorder body into T.
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())

	return v
}
