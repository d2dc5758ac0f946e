package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/file"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/memory"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config selects and locates the durable backend.
type Config struct {
	Backend string
	Path    string
}

// Durable is a key-value store that reports its health and must be closed.
type Durable interface {
	ports.KeyValueStore
	ports.HealthChecker
	io.Closer
}

// Watcher is implemented by backends that can report external modifications.
type Watcher interface {
	Watch(ctx context.Context, onChange func(context.Context)) error
}

// Open creates the durable store named by cfg.Backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Durable, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite, "":
		s, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		return s, nil

	case BackendFile:
		s, err := file.Open(cfg.Path, file.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}

		return s, nil

	case BackendMemory:
		return memory.New("durable-memory"), nil

	default:
		return nil, domain.NewValidationErrorWithValue("storage.backend", "unknown backend", cfg.Backend)
	}
}
