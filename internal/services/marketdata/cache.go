package marketdata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FileCache stores fetched series as JSON files under an explicitly
// configured directory. Entries expire by file modification time.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates the cache directory if needed. A zero ttl means
// entries never expire.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Load unmarshals the cached entry into v. Returns false when the entry
// is absent or expired.
func (c *FileCache) Load(key string, v any) (bool, error) {
	path := c.path(key)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrap(err, "stat cache entry")
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, nil
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrap(err, "read cache entry")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		// a corrupt entry behaves like a miss so it gets refetched
		return false, nil
	}
	return true, nil
}

// Store writes v as the cached entry for key.
func (c *FileCache) Store(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal cache entry")
	}
	if err := os.WriteFile(c.path(key), payload, 0o644); err != nil {
		return errors.Wrap(err, "write cache entry")
	}
	return nil
}

func (c *FileCache) path(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(c.dir, sanitized+".json")
}
