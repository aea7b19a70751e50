package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/admitscan/internal/aggregate"
	"github.com/hyperifyio/admitscan/internal/cache"
	"github.com/hyperifyio/admitscan/internal/discover"
	"github.com/hyperifyio/admitscan/internal/extract"
	"github.com/hyperifyio/admitscan/internal/fetch"
	"github.com/hyperifyio/admitscan/internal/llm"
	"github.com/hyperifyio/admitscan/internal/planner"
	"github.com/hyperifyio/admitscan/internal/search"
)

// ErrNoProvider is returned when the configured search provider is unknown.
var ErrNoProvider = errors.New("no search provider")

// App owns the wired discovery pipeline and its long-lived resources.
type App struct {
	cfg      Config
	pipeline *discover.Pipeline
	closers  []func() error
}

// New validates cfg and wires providers, fetcher, planner and cache.
func New(_ context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := newAPIClient(cfg)
	provider, err := NewProvider(cfg, hc)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	store, closer, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	var pl planner.Planner = planner.NewBuilder()
	if strings.TrimSpace(cfg.LLMModel) != "" {
		pl = &planner.LLMExpander{
			Base:   planner.NewBuilder(),
			Client: llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, hc),
			Model:  cfg.LLMModel,
		}
		log.Info().Str("model", cfg.LLMModel).Msg("LLM query expansion enabled")
	}

	a.pipeline = &discover.Pipeline{
		Planner: pl,
		Collector: &aggregate.Collector{
			Provider: provider,
			Timeout:  cfg.SearchTimeout,
			Limiter:  aggregate.NewLimiter(cfg.SearchQPS),
		},
		Fetcher:     NewFetcher(cfg),
		Extractor:   extract.BlockExtractor{},
		Domains:     normalizeDomains(cfg.Domains),
		MaxSnippets: cfg.MaxSnippetsPerPage,
		MaxOutput:   cfg.MaxOutput,
		Cache:       store,
	}
	log.Debug().Str("provider", provider.Name()).Str("cache", cfg.CacheBackend).Int("domains", len(cfg.Domains)).Msg("app ready")
	return a, nil
}

// NewProvider builds the configured search provider.
func NewProvider(cfg Config, hc *http.Client) (search.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.SearchProvider)) {
	case ProviderGoogle:
		return &search.GoogleCSE{APIKey: cfg.GoogleAPIKey, CX: cfg.GoogleCX, Endpoint: cfg.GoogleEndpoint}, nil
	case ProviderSearx:
		return &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc, UserAgent: cfg.SearxUA}, nil
	case ProviderFile:
		return &search.FileProvider{Path: cfg.FileSearchPath}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoProvider, cfg.SearchProvider)
}

// NewFetcher builds the page fetcher from the fetch settings.
func NewFetcher(cfg Config) *fetch.Client {
	return &fetch.Client{
		Identities:   cfg.Identities,
		Proxy:        cfg.Proxy,
		Proxies:      cfg.Proxies,
		RefererHosts: cfg.RefererHosts,
		MaxAttempts:  cfg.FetchAttempts,
		BaseDelay:    cfg.FetchBaseDelay,
		MaxJitter:    cfg.FetchJitter,
		Timeout:      cfg.FetchTimeout,
	}
}

func newStore(cfg Config) (cache.Store, func() error, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	if (backend == CacheFile || backend == CacheSQLite) && cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
		}
	}
	var (
		store  cache.Store
		closer func() error
	)
	switch backend {
	case "", CacheNone:
		return nil, nil, nil
	case CacheMemory:
		return cache.NewMemoryStore(cfg.CacheTTL), nil, nil
	case CacheFile:
		store = &cache.FileStore{Dir: filepath.Join(cfg.CacheDir, "results"), TTL: cfg.CacheTTL, StrictPerms: cfg.CacheStrictPerms}
	case CacheSQLite:
		s, err := cache.OpenSQLite(filepath.Join(cfg.CacheDir, "results.db"), cfg.CacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache: %w", err)
		}
		store, closer = s, s.Close
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	// purge is best-effort; expired entries are also skipped on read
	if p, ok := store.(cache.Purger); ok {
		if n, err := p.PurgeExpired(context.Background()); err != nil {
			log.Warn().Err(err).Str("cache", backend).Msg("cache purge failed")
		} else if n > 0 {
			log.Info().Int64("removed", n).Str("cache", backend).Msg("purged expired cache entries")
		}
	}
	return store, closer, nil
}

func normalizeDomains(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

// Pipeline exposes the wired pipeline, e.g. for the HTTP server.
func (a *App) Pipeline() *discover.Pipeline { return a.pipeline }

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }

// Discover runs one lookup, applying the configured result budget when the
// request has none.
func (a *App) Discover(ctx context.Context, req discover.Request) (discover.Result, error) {
	if req.MaxResults <= 0 {
		req.MaxResults = a.cfg.MaxResults
	}
	return a.pipeline.Run(ctx, req)
}

// Close releases the cache backend.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}
