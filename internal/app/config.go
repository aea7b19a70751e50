package app

import (
	"time"

	"github.com/hyperifyio/admitscan/internal/fetch"
)

// Search provider names accepted in Config.SearchProvider.
const (
	ProviderGoogle = "google"
	ProviderSearx  = "searx"
	ProviderFile   = "file"
)

// Cache backends accepted in Config.CacheBackend.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheSQLite = "sqlite"
)

// Config holds runtime configuration for the application.
type Config struct {
	// Search
	SearchProvider string
	GoogleAPIKey   string
	GoogleCX       string
	GoogleEndpoint string
	SearxURL       string
	SearxKey       string
	SearxUA        string
	FileSearchPath string
	SearchTimeout  time.Duration
	SearchQPS      float64
	// SSLVerify controls TLS verification for the search client; self-hosted
	// SearxNG instances often use self-signed certificates.
	SSLVerify bool

	// Fetch
	Identities     []fetch.Identity
	Proxy          string
	Proxies        []string
	RefererHosts   []string
	FetchAttempts  int
	FetchBaseDelay time.Duration
	FetchJitter    time.Duration
	FetchTimeout   time.Duration

	// Discovery
	Domains            map[string]string
	MaxResults         int
	MaxOutput          int
	MaxSnippetsPerPage int

	// LLM query expansion; disabled without a model
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Cache
	CacheBackend     string
	CacheDir         string
	CacheTTL         time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Behavior
	ListenAddr string
	Verbose    bool
}

// DefaultConfig returns the settings used when neither flags, env nor a
// config file say otherwise.
func DefaultConfig() Config {
	return Config{
		SearchProvider: ProviderGoogle,
		SearxUA:        "admitscan/1.0",
		SearchTimeout:  10 * time.Second,
		SearchQPS:      1,
		SSLVerify:      true,
		FetchAttempts:  fetch.DefaultMaxAttempts,
		FetchBaseDelay: fetch.DefaultBaseDelay,
		FetchJitter:    fetch.DefaultMaxJitter,
		FetchTimeout:   fetch.DefaultTimeout,
		RefererHosts:   []string{"handbook.unimelb.edu.au", "handbook.monash.edu", "sydney.edu.au"},
		MaxResults:     5,
		CacheBackend:   CacheMemory,
		CacheDir:       ".admitscan-cache",
		CacheTTL:       24 * time.Hour,
		ListenAddr:     ":8080",
	}
}

// ApplyDefaults fills every zero-valued field of cfg from DefaultConfig.
// It runs last so that flags, env and the config file all win over it.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()
	setString := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v time.Duration) {
		if *dst == 0 {
			*dst = v
		}
	}
	setString(&cfg.SearchProvider, def.SearchProvider)
	setString(&cfg.SearxUA, def.SearxUA)
	setString(&cfg.CacheBackend, def.CacheBackend)
	setString(&cfg.CacheDir, def.CacheDir)
	setString(&cfg.ListenAddr, def.ListenAddr)
	setDuration(&cfg.SearchTimeout, def.SearchTimeout)
	setDuration(&cfg.FetchBaseDelay, def.FetchBaseDelay)
	setDuration(&cfg.FetchJitter, def.FetchJitter)
	setDuration(&cfg.FetchTimeout, def.FetchTimeout)
	setDuration(&cfg.CacheTTL, def.CacheTTL)
	if cfg.SearchQPS == 0 {
		cfg.SearchQPS = def.SearchQPS
	}
	if cfg.FetchAttempts == 0 {
		cfg.FetchAttempts = def.FetchAttempts
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = def.MaxResults
	}
	if len(cfg.RefererHosts) == 0 {
		cfg.RefererHosts = append([]string{}, def.RefererHosts...)
	}
}
