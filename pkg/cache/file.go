package cache

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/modkit/pkg/json"
)

// FileCache implements a file-based cache for CLI usage.
// Cache entries are stored as files in a directory with metadata (expiration).
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// entry wraps cached data with metadata.
type entry struct {
	data      []byte
	expiresAt time.Time
}

func (e entry) Serialize(w *json.Writer) {
	w.StartObjectCompact()
	w.MemberValue("data", base64.StdEncoding.EncodeToString(e.data))
	if !e.expiresAt.IsZero() {
		w.MemberValue("expires_at", e.expiresAt.UnixNano())
	}
	w.EndObject()
}

func (e *entry) Deserialize(r *json.Reader) error {
	o, err := r.GetObject()
	if err != nil {
		return err
	}
	s, err := o.GetString("data")
	if err != nil {
		return err
	}
	if e.data, err = base64.StdEncoding.DecodeString(s); err != nil {
		return err
	}
	e.expiresAt = time.Time{}
	if o.Has("expires_at") {
		ns, err := o.GetInt64("expires_at")
		if err != nil {
			return err
		}
		e.expiresAt = time.Unix(0, ns)
	}
	return o.Finish()
}

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e entry
	if err := json.NewReader(data, json.WithPath(path), json.WithStrict(false)).Read(&e); err != nil {
		// Invalid cache entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return e.data, true, nil
}

// Set stores a value in the cache.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	var buf bytes.Buffer
	w := json.NewWriter(&buf, false)
	w.Write(e)
	if err := w.Flush(); err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry, keeping the directory.
func (c *FileCache) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path.
// Uses a simple hash-based directory structure to avoid too many files in one dir.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	// Use first 2 chars as subdirectory for distribution
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(c.dir, subdir, filename)
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
)
