package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Purger drops expired entries in bulk. FileStore and SQLiteStore implement it;
// the memory store only evicts lazily on read.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ClearDir empties a cache directory and recreates it. The filesystem root and
// the working directory are refused.
func ClearDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return errors.New("empty dir")
	}
	clean := filepath.Clean(dir)
	if clean == "." || clean == string(filepath.Separator) {
		return fmt.Errorf("refusing to clear %q", dir)
	}
	if err := os.RemoveAll(clean); err != nil {
		return err
	}
	return os.MkdirAll(clean, 0o755)
}

// PurgeExpired removes entries older than the store's TTL together with
// unreadable entry files and stale temp files. A missing directory purges
// nothing.
func (c *FileStore) PurgeExpired(ctx context.Context) (int64, error) {
	if c == nil || c.Dir == "" {
		return 0, errors.New("cache dir not configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Now.now()
	var removed int64
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != c.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		stale := strings.HasSuffix(name, ".json.tmp")
		if !stale {
			if !strings.HasSuffix(name, ".json") {
				return nil
			}
			stale = c.recordExpired(path, now)
		}
		if stale && os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

func (c *FileStore) recordExpired(path string, now time.Time) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return true
	}
	return expired(rec.Entry, c.TTL, now)
}
