package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func TestOpen_Backends(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		file      string
		wantName  string
		watchable bool
	}{
		{name: "sqlite", backend: BackendSQLite, file: "quotes.db", wantName: "sqlite"},
		{name: "default is sqlite", backend: "", file: "quotes.db", wantName: "sqlite"},
		{name: "file", backend: BackendFile, file: "quotes.json", wantName: "file-store", watchable: true},
		{name: "memory", backend: "MEMORY", wantName: "durable-memory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			store, err := Open(ctx, Config{Backend: tt.backend, Path: filepath.Join(t.TempDir(), tt.file)}, slog.Default())
			require.NoError(t, err)

			t.Cleanup(func() { _ = store.Close() })

			assert.Equal(t, tt.wantName, store.Name())

			_, watchable := store.(Watcher)
			assert.Equal(t, tt.watchable, watchable)

			require.NoError(t, store.Set(ctx, "quotes", "[]"))

			got, err := store.Get(ctx, "quotes")
			require.NoError(t, err)
			assert.Equal(t, "[]", got)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "redis"}, slog.Default())

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
