package aggregate

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/admitscan/internal/search"
)

// Collector issues one search call per query and merges the links.
type Collector struct {
	Provider search.Provider
	// PerQuery is the result cap passed to each search call.
	PerQuery int
	// Timeout bounds each individual search call. Zero disables it.
	Timeout time.Duration
	// Limiter paces outbound calls. Nil means no pacing.
	Limiter *rate.Limiter
}

// NewLimiter builds a limiter allowing qps calls per second with a burst of one.
// A non-positive qps returns nil.
func NewLimiter(qps float64) *rate.Limiter {
	if qps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(qps), 1)
}

// Collect runs queries sequentially in list order and returns the links in
// first-seen order without duplicates. Failed calls are logged and skipped.
func (c *Collector) Collect(ctx context.Context, queries []string) []string {
	out := make([]string, 0, len(queries)*4)
	if c == nil || c.Provider == nil {
		return out
	}
	seen := map[string]struct{}{}
	for _, q := range queries {
		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx); err != nil {
				log.Warn().Err(err).Str("query", q).Msg("search pacing interrupted")
				break
			}
		}
		results, err := c.search(ctx, q)
		if err != nil {
			log.Warn().Err(err).Str("query", q).Str("provider", c.Provider.Name()).Msg("search error")
			continue
		}
		added := 0
		for _, r := range results {
			link := strings.TrimSpace(r.URL)
			if link == "" {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			out = append(out, link)
			added++
		}
		log.Debug().Str("query", q).Int("results", len(results)).Int("new", added).Msg("search done")
	}
	return out
}

func (c *Collector) search(ctx context.Context, q string) ([]search.Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return c.Provider.Search(ctx, q, c.PerQuery)
}
