package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileRecord is the on-disk form of an entry. The key is kept so that
// purges and debugging do not need the original request.
type fileRecord struct {
	Key string `json:"key"`
	Entry
}

// FileStore persists entries as <sha256(key)>.json files in Dir.
type FileStore struct {
	Dir string
	TTL time.Duration
	Now Clock
	// StrictPerms, when true, enforces 0700 on the directory and 0600 on
	// files.
	StrictPerms bool

	mu sync.Mutex
}

func (c *FileStore) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

func (c *FileStore) pathFor(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.Dir, hex.EncodeToString(h[:])+".json")
}

func (c *FileStore) Get(_ context.Context, key string) (Entry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		// unreadable entries are treated as misses and replaced on next Set
		_ = os.Remove(p)
		return Entry{}, false, nil
	}
	if expired(rec.Entry, c.TTL, c.Now.now()) {
		_ = os.Remove(p)
		return Entry{}, false, nil
	}
	return rec.Entry, true, nil
}

func (c *FileStore) Set(_ context.Context, key string, e Entry) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e.SavedAt = c.Now.now()
	data, err := json.Marshal(fileRecord{Key: key, Entry: e})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	perm := os.FileMode(0o644)
	if c.StrictPerms {
		perm = 0o600
	}
	p := c.pathFor(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return os.Rename(tmp, p)
}

func (c *FileStore) Evict(_ context.Context, key string) error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(c.pathFor(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
