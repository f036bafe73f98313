package metadata

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/crypto/blake2b"

	"github.com/luiscosio/CiteIQ/internal/logging"
)

// ErrCacheBusy reports that another process holds the cache lock.
var ErrCacheBusy = errors.New("in use by another citeiq process")

// Cache persists raw provider payloads on disk, one JSON file per entry.
// Entries are addressed by a content hash of the request key, so the same
// lookup always maps to the same file. Unreadable or malformed entries are
// treated as misses.
type Cache struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewCache opens (creating if needed) a cache directory.
func NewCache(dir string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, "cache.lock")),
		logger: logger,
	}, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Acquire claims exclusive use of the cache directory. The cache assumes a
// single writer; a second process gets a clean error instead of torn files.
func (c *Cache) Acquire() error {
	locked, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("cache directory %s: %w", c.dir, ErrCacheBusy)
	}
	return nil
}

// Release gives up the cache lock.
func (c *Cache) Release() error {
	return c.lock.Unlock()
}

func (c *Cache) entryPath(key string) string {
	digest := blake2b.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(digest[:])+".json")
}

// Get returns the cached payload for key, or nil when absent or unreadable.
func (c *Cache) Get(key string) json.RawMessage {
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("failed to read cache entry", "path", path, "error", err)
		}
		return nil
	}
	if !json.Valid(data) {
		c.logger.Warn("corrupt cache entry treated as miss", "path", path)
		return nil
	}
	return data
}

// Put stores a payload under key. Write failures are logged, not fatal; the
// next lookup simply refetches.
func (c *Cache) Put(key string, payload json.RawMessage) {
	path := c.entryPath(key)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		c.logger.Warn("failed to write cache entry", "path", path, "error", err)
	}
}
