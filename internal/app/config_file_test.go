package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const yamlConfig = `search:
  provider: searx
  timeout: 5s
searx:
  url: http://searx.local
  sslVerify: false
fetch:
  attempts: 4
  baseDelay: 500ms
  proxies: ["http://p1:3128"]
  identities:
    - name: bot
      headers:
        User-Agent: custom-agent
domains:
  Monash University: monash.edu
cache:
  backend: file
  dir: /tmp/admit
  ttl: 12h
`

const tomlConfig = `listen = ":9090"

[search]
provider = "google"

[google]
key = "k"
cx = "cx"

[cache]
backend = "sqlite"
ttl = "48h"

[domains]
"University of Sydney" = "sydney.edu.au"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	fc, err := LoadConfigFile(writeConfig(t, "admitscan.yaml", yamlConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Config{SSLVerify: true}
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	ApplyDefaults(&cfg)
	if cfg.SearchProvider != ProviderSearx || cfg.SearxURL != "http://searx.local" || cfg.SSLVerify {
		t.Fatalf("search settings not applied: %+v", cfg)
	}
	if cfg.SearchTimeout != 5*time.Second || cfg.FetchBaseDelay != 500*time.Millisecond || cfg.CacheTTL != 12*time.Hour {
		t.Fatalf("durations not applied: %s %s %s", cfg.SearchTimeout, cfg.FetchBaseDelay, cfg.CacheTTL)
	}
	if cfg.FetchAttempts != 4 || len(cfg.Proxies) != 1 {
		t.Fatalf("fetch settings not applied: %+v", cfg)
	}
	if len(cfg.Identities) != 1 || cfg.Identities[0].Headers["User-Agent"] != "custom-agent" {
		t.Fatalf("identities not applied: %+v", cfg.Identities)
	}
	if cfg.Domains["monash university"] != "monash.edu" {
		t.Fatalf("domains not applied: %v", cfg.Domains)
	}
	if cfg.CacheBackend != CacheFile || cfg.CacheDir != "/tmp/admit" {
		t.Fatalf("cache settings not applied: %+v", cfg)
	}
	if cfg.FetchTimeout != DefaultConfig().FetchTimeout {
		t.Fatalf("expected default fetch timeout, got %s", cfg.FetchTimeout)
	}
}

func TestLoadConfigFile_TOML(t *testing.T) {
	fc, err := LoadConfigFile(writeConfig(t, "admitscan.toml", tomlConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var cfg Config
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.GoogleAPIKey != "k" || cfg.CacheBackend != CacheSQLite || cfg.CacheTTL != 48*time.Hour {
		t.Fatalf("toml settings not applied: %+v", cfg)
	}
	if cfg.Domains["university of sydney"] != "sydney.edu.au" {
		t.Fatalf("domains not applied: %v", cfg.Domains)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	fc, err := LoadConfigFile(writeConfig(t, "admitscan.json", `{"search": {"provider": "file", "file": "results.json"}, "max": {"results": 7}}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var cfg Config
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.SearchProvider != ProviderFile || cfg.FileSearchPath != "results.json" || cfg.MaxResults != 7 {
		t.Fatalf("json settings not applied: %+v", cfg)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	fc, err := LoadConfigFile(writeConfig(t, "admitscan.yml", yamlConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Config{SearxURL: "http://flag.local", CacheTTL: time.Hour, Domains: map[string]string{"monash university": "www.monash.edu"}}
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.SearxURL != "http://flag.local" || cfg.CacheTTL != time.Hour {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
	if cfg.Domains["monash university"] != "www.monash.edu" {
		t.Fatalf("explicit domain overridden: %v", cfg.Domains)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	var fc FileConfig
	fc.Cache.TTL = "forever"
	var cfg Config
	if err := ApplyFileConfig(&cfg, fc); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := DefaultConfig()
	valid.GoogleAPIKey, valid.GoogleCX = "k", "cx"
	if err := ValidateConfig(valid); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"missing google key": func(c *Config) { c.GoogleAPIKey = "" },
		"searx without url":  func(c *Config) { c.SearchProvider = ProviderSearx },
		"file without path":  func(c *Config) { c.SearchProvider = ProviderFile },
		"unknown cache":      func(c *Config) { c.CacheBackend = "redis" },
		"sqlite without dir": func(c *Config) { c.CacheBackend = CacheSQLite; c.CacheDir = "" },
		"too many results":   func(c *Config) { c.MaxResults = 11 },
		"bad proxy":          func(c *Config) { c.Proxies = []string{"::nope"} },
	}
	for name, mutate := range cases {
		c := valid
		mutate(&c)
		if err := ValidateConfig(c); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}

	c := valid
	c.SearchProvider = "bing"
	if err := ValidateConfig(c); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}
