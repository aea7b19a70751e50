package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long a discovery result stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry is a cached discovery result for one (university, program) pair.
type Entry struct {
	DataFound  bool      `json:"dataFound"`
	SourceURLs []string  `json:"sourceURLs"`
	Snippets   []string  `json:"snippets"`
	SavedAt    time.Time `json:"saved_at"`
}

// Store is a time-bounded result cache shared across requests.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entry for key. Expired entries are evicted and reported
	// as a miss.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores e under key, stamping SavedAt from the store's clock.
	Set(ctx context.Context, key string, e Entry) error
	Evict(ctx context.Context, key string) error
}

// Key builds the cache key for a request. An explicit domain override is part
// of the key so it never shares an entry with the table-resolved domain.
func Key(university, program, domain string) string {
	k := strings.ToLower(strings.TrimSpace(university)) + "|" + strings.ToLower(strings.TrimSpace(program))
	if d := strings.ToLower(strings.TrimSpace(domain)); d != "" {
		k += "|" + d
	}
	return k
}

// Clock returns the current time. Stores use time.Now when nil.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func expired(e Entry, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Sub(e.SavedAt) > ttl
}
