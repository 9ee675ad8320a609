package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// entrySchema is bumped whenever the entry layout changes; entries with a
// different schema are treated as misses.
const entrySchema uint16 = 1

// FileCache implements a file-based cache for CLI usage.
// Entries are msgpack-encoded files in a two-level directory tree.
type FileCache struct {
	mu  sync.RWMutex
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// DefaultDir returns $XDG_CACHE_HOME/wiring, falling back to ~/.cache/wiring.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "wiring"), nil
}

// entry wraps cached data with metadata.
type entry struct {
	Schema    uint16
	Data      []byte
	ExpiresAt time.Time
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	path := c.path(key)
	data, err := os.ReadFile(path)
	c.mu.RUnlock()

	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil || e.Schema != entrySchema {
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}

	if !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt) {
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}

	return e.Data, true, nil
}

// Set stores a value in the cache. The file is written to a temporary name
// and renamed into place.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := entry{Schema: entrySchema, Data: data}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}

	encoded, err := msgpack.Marshal(&e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(encoded); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(c.dir, "*", "*.mp"))
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
	}
	return len(matches), nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".mp")
}

var _ Cache = (*FileCache)(nil)
