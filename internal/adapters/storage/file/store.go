// Package file provides a ports.KeyValueStore kept in a single JSON file.
//
// The file holds one JSON object mapping keys to string values. Writes take an
// exclusive lock on a sibling ".lock" file, rewrite a temporary file and rename
// it over the original, so readers in other processes never see a partial file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// DefaultDebounce coalesces bursts of filesystem events into one notification.
const DefaultDebounce = 200 * time.Millisecond

// Store is a durable key-value store in one JSON file.
type Store struct {
	// mu serializes access within this process; the flock only excludes
	// other processes, since one handle reports an already-held lock as acquired.
	mu sync.Mutex

	path     string
	lock     *flock.Flock
	logger   *slog.Logger
	debounce time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebounce sets how long Watch waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// Open prepares a store at path. The file itself is created on first write.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, domain.NewValidationError("storage.path", "must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	s := &Store{
		path:     path,
		lock:     flock.New(path + ".lock"),
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Get returns the value under key, or a NotFoundError.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := s.rlock(ctx); err != nil {
		return "", err
	}
	defer s.unlock()

	data, err := s.read()
	if err != nil {
		return "", err
	}

	value, ok := data[key]
	if !ok {
		return "", domain.NewNotFoundError("key", key)
	}

	return value, nil
}

// Set stores value under key and rewrites the file.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.wlock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	data[key] = value

	return s.write(data)
}

func (s *Store) read() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, domain.NewParseErrorWithCause(s.path, "not a JSON object of strings", err)
	}

	return data, nil
}

func (s *Store) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

func (s *Store) rlock(ctx context.Context) error {
	s.mu.Lock()

	ok, err := s.lock.TryRLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("locking %s: %w", s.path, err)
	}

	if !ok {
		s.mu.Unlock()

		return domain.NewUnavailableError("file-store", "lock not acquired")
	}

	return nil
}

func (s *Store) wlock(ctx context.Context) error {
	s.mu.Lock()

	ok, err := s.lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		s.mu.Unlock()

		return fmt.Errorf("locking %s: %w", s.path, err)
	}

	if !ok {
		s.mu.Unlock()

		return domain.NewUnavailableError("file-store", "lock not acquired")
	}

	return nil
}

func (s *Store) unlock() {
	defer s.mu.Unlock()

	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("releasing file lock failed", slog.String("path", s.path), slog.Any("error", err))
	}
}

// Watch calls onChange whenever the file is created, written or replaced by
// anyone, including this process. Bursts of events within the debounce window
// produce one call. Watch blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: an atomic rename replaces the file's inode, which
	// would silently end a watch on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}

	s.logger.InfoContext(ctx, "watching storage file", slog.String("path", s.path))

	target := filepath.Clean(s.path)

	timer := time.NewTimer(s.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}

			timer.Reset(s.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.logger.WarnContext(ctx, "storage watcher error", slog.Any("error", err))

		case <-timer.C:
			s.logger.DebugContext(ctx, "storage file changed", slog.String("path", s.path))
			onChange(ctx)
		}
	}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "file-store"
}

// Check implements ports.HealthChecker: the file must be readable and parse.
func (s *Store) Check(ctx context.Context) error {
	if err := s.rlock(ctx); err != nil {
		return err
	}
	defer s.unlock()

	if _, err := s.read(); err != nil {
		return domain.NewUnavailableError("file-store", err.Error())
	}

	return nil
}

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.lock.Close()
}
