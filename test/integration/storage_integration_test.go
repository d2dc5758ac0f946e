//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/presenter"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

// newFileService opens the file store at path and starts a service on it.
func newFileService(t *testing.T, path string) (*app.QuoteService, *file.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := file.Open(path, file.WithLogger(logger), file.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	persistence := app.NewPersistence(store, memory.New("session"), logger)
	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       app.NewQuoteStore(persistence, logger),
		Persistence: persistence,
		Presenter:   presenter.NewViewModel(),
		Logger:      logger,
	})
	service.Start(context.Background())

	return service, store
}

// TestFileStore_WatcherReloadsOtherProcessWrites verifies that a quote added
// through one store reaches a second service sharing the file.
func TestFileStore_WatcherReloadsOtherProcessWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.json")

	writer, _ := newFileService(t, path)
	reader, readerStore := newFileService(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- readerStore.Watch(ctx, reader.HandleExternalChange)
	}()

	// Let the watcher register before writing.
	time.Sleep(50 * time.Millisecond)

	_, err := writer.SubmitNewQuote(context.Background(), "Shared", "Files")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(reader.ListQuotes(context.Background(), "files")) == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

// TestStack_ConcurrentAddsPersist verifies that concurrent POSTs all land in
// the sqlite store and survive a restart.
func TestStack_ConcurrentAddsPersist(t *testing.T) {
	remote := newFakeRemote()
	t.Cleanup(remote.Close)

	dir := t.TempDir()
	ctx := context.Background()

	s, err := newStack(ctx, remote, stackOptions{dir: dir})
	require.NoError(t, err)

	const writers = 25

	var wg sync.WaitGroup

	for i := range writers {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			body := fmt.Sprintf(`{"text":"quote %d","category":"load"}`, n)

			resp, err := http.Post(s.URL+"/api/v1/quotes", "application/json", strings.NewReader(body))
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			assert.Equal(t, http.StatusCreated, resp.StatusCode)
		}(i)
	}

	wg.Wait()
	s.Close()

	s, err = newStack(ctx, remote, stackOptions{dir: dir})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Len(t, s.service.ListQuotes(ctx, "load"), writers)
	assert.Len(t, s.service.ListQuotes(ctx, ""), 3+writers)
}

// TestStack_ExportImportAcrossInstances verifies that a document exported
// from one instance imports into another.
func TestStack_ExportImportAcrossInstances(t *testing.T) {
	remote := newFakeRemote()
	t.Cleanup(remote.Close)

	ctx := context.Background()

	source, err := newStack(ctx, remote, stackOptions{dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(source.Close)

	target, err := newStack(ctx, remote, stackOptions{dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(target.Close)

	resp, err := http.Get(source.URL + "/api/v1/quotes/export")
	require.NoError(t, err)

	exported, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(target.URL+"/api/v1/quotes/import", "application/json", strings.NewReader(string(exported)))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), gjson.GetBytes(body, "imported").Int())
	assert.Equal(t, int64(6), gjson.GetBytes(body, "total").Int())
}

// TestConfig_SelectsStorageBackend verifies that YAML profiles and APP_
// variables reach storage.Open.
func TestConfig_SelectsStorageBackend(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "quotes.json")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
storage:
  backend: sqlite
  path: /nonexistent/quotes.db
sync:
  snapshot_size: 7
`), 0o600))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(`
app:
  environment: test
storage:
  backend: file
`), 0o600))

	t.Setenv("APP_STORAGE_PATH", dataPath)
	t.Setenv("APP_SYNC_FETCH__TIMEOUT", "2s")

	cfg, err := config.LoadWithOptions(config.LoadOptions{Profile: "test", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, 7, cfg.Sync.SnapshotSize)
	assert.Equal(t, 2*time.Second, cfg.Sync.FetchTimeout)

	durable, err := storage.Open(context.Background(), storage.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = durable.Close() })

	assert.IsType(t, &file.Store{}, durable)
	require.NoError(t, durable.Set(context.Background(), app.KeyQuotes, "[]"))

	_, err = os.Stat(dataPath)
	assert.NoError(t, err, "file backend writes to the configured path")
}
