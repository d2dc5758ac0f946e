// Package memory provides an in-process ports.KeyValueStore.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// Store is a map-backed key-value store safe for concurrent use.
// Its contents vanish with the process, which makes it the session store.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
	name string
}

// New creates an empty store reported as name in health checks.
func New(name string) *Store {
	return &Store{data: make(map[string]string), name: name}
}

// Get returns the value under key, or a NotFoundError.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return "", domain.NewNotFoundError("key", key)
	}

	return value, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value

	return nil
}

// Snapshot returns a copy of every entry.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.data)
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return s.name
}

// Check implements ports.HealthChecker. A map is always healthy.
func (s *Store) Check(context.Context) error {
	return nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}
