package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/admitscan/internal/fetch"
)

// FileConfig represents the single-file configuration schema.
// Durations are strings such as "24h" so the same schema reads from YAML,
// JSON and TOML.
type FileConfig struct {
	Search struct {
		Provider string  `yaml:"provider" json:"provider" toml:"provider"`
		File     string  `yaml:"file" json:"file" toml:"file"`
		Timeout  string  `yaml:"timeout" json:"timeout" toml:"timeout"`
		QPS      float64 `yaml:"qps" json:"qps" toml:"qps"`
	} `yaml:"search" json:"search" toml:"search"`

	Google struct {
		Key      string `yaml:"key" json:"key" toml:"key"`
		CX       string `yaml:"cx" json:"cx" toml:"cx"`
		Endpoint string `yaml:"endpoint" json:"endpoint" toml:"endpoint"`
	} `yaml:"google" json:"google" toml:"google"`

	Searx struct {
		URL       string `yaml:"url" json:"url" toml:"url"`
		Key       string `yaml:"key" json:"key" toml:"key"`
		UA        string `yaml:"ua" json:"ua" toml:"ua"`
		SSLVerify *bool  `yaml:"sslVerify" json:"sslVerify" toml:"sslVerify"`
	} `yaml:"searx" json:"searx" toml:"searx"`

	Fetch struct {
		Attempts     int              `yaml:"attempts" json:"attempts" toml:"attempts"`
		BaseDelay    string           `yaml:"baseDelay" json:"baseDelay" toml:"baseDelay"`
		Jitter       string           `yaml:"jitter" json:"jitter" toml:"jitter"`
		Timeout      string           `yaml:"timeout" json:"timeout" toml:"timeout"`
		Proxy        string           `yaml:"proxy" json:"proxy" toml:"proxy"`
		Proxies      []string         `yaml:"proxies" json:"proxies" toml:"proxies"`
		RefererHosts []string         `yaml:"refererHosts" json:"refererHosts" toml:"refererHosts"`
		Identities   []fetch.Identity `yaml:"identities" json:"identities" toml:"identities"`
	} `yaml:"fetch" json:"fetch" toml:"fetch"`

	// Domains maps university names to their site domain.
	Domains map[string]string `yaml:"domains" json:"domains" toml:"domains"`

	Max struct {
		Results         int `yaml:"results" json:"results" toml:"results"`
		Output          int `yaml:"output" json:"output" toml:"output"`
		SnippetsPerPage int `yaml:"snippetsPerPage" json:"snippetsPerPage" toml:"snippetsPerPage"`
	} `yaml:"max" json:"max" toml:"max"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base" toml:"base"`
		Model   string `yaml:"model" json:"model" toml:"model"`
		APIKey  string `yaml:"key" json:"key" toml:"key"`
	} `yaml:"llm" json:"llm" toml:"llm"`

	Cache struct {
		Backend     string `yaml:"backend" json:"backend" toml:"backend"`
		Dir         string `yaml:"dir" json:"dir" toml:"dir"`
		TTL         string `yaml:"ttl" json:"ttl" toml:"ttl"`
		Clear       bool   `yaml:"clear" json:"clear" toml:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	Listen  string `yaml:"listen" json:"listen" toml:"listen"`
	Verbose bool   `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig, picking the
// format by extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their default. Flags should already have
// been parsed; explicit flag values are preserved.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	def := DefaultConfig()

	if (cfg.SearchProvider == "" || cfg.SearchProvider == def.SearchProvider) && fc.Search.Provider != "" {
		cfg.SearchProvider = fc.Search.Provider
	}
	if cfg.FileSearchPath == "" && fc.Search.File != "" {
		cfg.FileSearchPath = fc.Search.File
	}
	if (cfg.SearchQPS == 0 || cfg.SearchQPS == def.SearchQPS) && fc.Search.QPS > 0 {
		cfg.SearchQPS = fc.Search.QPS
	}
	if cfg.GoogleAPIKey == "" && fc.Google.Key != "" {
		cfg.GoogleAPIKey = fc.Google.Key
	}
	if cfg.GoogleCX == "" && fc.Google.CX != "" {
		cfg.GoogleCX = fc.Google.CX
	}
	if cfg.GoogleEndpoint == "" && fc.Google.Endpoint != "" {
		cfg.GoogleEndpoint = fc.Google.Endpoint
	}
	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if (cfg.SearxUA == "" || cfg.SearxUA == def.SearxUA) && fc.Searx.UA != "" {
		cfg.SearxUA = fc.Searx.UA
	}
	if fc.Searx.SSLVerify != nil {
		cfg.SSLVerify = *fc.Searx.SSLVerify
	}

	if (cfg.FetchAttempts == 0 || cfg.FetchAttempts == def.FetchAttempts) && fc.Fetch.Attempts > 0 {
		cfg.FetchAttempts = fc.Fetch.Attempts
	}
	if cfg.Proxy == "" && fc.Fetch.Proxy != "" {
		cfg.Proxy = fc.Fetch.Proxy
	}
	if len(cfg.Proxies) == 0 && len(fc.Fetch.Proxies) > 0 {
		cfg.Proxies = append([]string{}, fc.Fetch.Proxies...)
	}
	if len(fc.Fetch.RefererHosts) > 0 && (len(cfg.RefererHosts) == 0 || sameStrings(cfg.RefererHosts, def.RefererHosts)) {
		cfg.RefererHosts = append([]string{}, fc.Fetch.RefererHosts...)
	}
	if len(cfg.Identities) == 0 && len(fc.Fetch.Identities) > 0 {
		cfg.Identities = append([]fetch.Identity{}, fc.Fetch.Identities...)
	}

	if len(fc.Domains) > 0 {
		if cfg.Domains == nil {
			cfg.Domains = map[string]string{}
		}
		for uni, d := range fc.Domains {
			key := strings.ToLower(strings.TrimSpace(uni))
			if _, ok := cfg.Domains[key]; !ok {
				cfg.Domains[key] = strings.TrimSpace(d)
			}
		}
	}

	if (cfg.MaxResults == 0 || cfg.MaxResults == def.MaxResults) && fc.Max.Results > 0 {
		cfg.MaxResults = fc.Max.Results
	}
	if cfg.MaxOutput == 0 && fc.Max.Output > 0 {
		cfg.MaxOutput = fc.Max.Output
	}
	if cfg.MaxSnippetsPerPage == 0 && fc.Max.SnippetsPerPage > 0 {
		cfg.MaxSnippetsPerPage = fc.Max.SnippetsPerPage
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if (cfg.CacheBackend == "" || cfg.CacheBackend == def.CacheBackend) && fc.Cache.Backend != "" {
		cfg.CacheBackend = fc.Cache.Backend
	}
	if (cfg.CacheDir == "" || cfg.CacheDir == def.CacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if (cfg.ListenAddr == "" || cfg.ListenAddr == def.ListenAddr) && fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
		def  time.Duration
	}{
		{"search.timeout", fc.Search.Timeout, &cfg.SearchTimeout, def.SearchTimeout},
		{"fetch.baseDelay", fc.Fetch.BaseDelay, &cfg.FetchBaseDelay, def.FetchBaseDelay},
		{"fetch.jitter", fc.Fetch.Jitter, &cfg.FetchJitter, def.FetchJitter},
		{"fetch.timeout", fc.Fetch.Timeout, &cfg.FetchTimeout, def.FetchTimeout},
		{"cache.ttl", fc.Cache.TTL, &cfg.CacheTTL, def.CacheTTL},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" || (*d.dst != 0 && *d.dst != d.def) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return fmt.Errorf("config: %s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	switch strings.ToLower(trim(cfg.SearchProvider)) {
	case ProviderGoogle:
		if trim(cfg.GoogleAPIKey) == "" || trim(cfg.GoogleCX) == "" {
			return errors.New("config: google.key and google.cx are required (or set GOOGLE_API_KEY and GOOGLE_CX)")
		}
	case ProviderSearx:
		if trim(cfg.SearxURL) == "" {
			return errors.New("config: searx.url is required (or set SEARX_URL)")
		}
	case ProviderFile:
		if trim(cfg.FileSearchPath) == "" {
			return errors.New("config: search.file is required (or set SEARCH_FILE)")
		}
	default:
		return fmt.Errorf("config: %w: %q", ErrNoProvider, cfg.SearchProvider)
	}
	switch strings.ToLower(trim(cfg.CacheBackend)) {
	case "", CacheNone, CacheMemory:
	case CacheFile, CacheSQLite:
		if trim(cfg.CacheDir) == "" {
			return errors.New("config: cache.dir is required for the file and sqlite cache backends")
		}
	default:
		return fmt.Errorf("config: unknown cache backend %q", cfg.CacheBackend)
	}
	if cfg.MaxResults < 0 || cfg.MaxResults > 10 {
		return errors.New("config: max.results must be between 1 and 10")
	}
	if cfg.FetchAttempts < 0 || cfg.MaxOutput < 0 || cfg.MaxSnippetsPerPage < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Proxy != "" {
		if err := validateProxy(cfg.Proxy); err != nil {
			return err
		}
	}
	for _, p := range cfg.Proxies {
		if err := validateProxy(p); err != nil {
			return err
		}
	}
	return nil
}

func validateProxy(p string) error {
	u, err := url.Parse(strings.TrimSpace(p))
	if err != nil || u.Host == "" {
		return fmt.Errorf("config: invalid proxy %q", p)
	}
	return nil
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func trim(s string) string { return strings.TrimSpace(s) }
