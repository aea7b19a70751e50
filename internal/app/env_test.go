package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// This test verifies that LoadEnvFiles reads KEY=VALUE pairs and populates os.Environ.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nBAR=\"beta\"\nmalformed line\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}

	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta" {
		t.Fatalf("BAR=%q, want beta", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

// Real environment values are not replaced by dotenv files.
func TestLoadEnvFiles_ProcessEnvWins(t *testing.T) {
	t.Setenv("SEARX_URL", "http://from-shell")
	t.Setenv("CACHE_DIR", "")
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("SEARX_URL=http://from-file\nCACHE_DIR=/var/cache/admitscan\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadEnvFiles(p); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("SEARX_URL"); got != "http://from-shell" {
		t.Fatalf("SEARX_URL=%q, want shell value", got)
	}
	if got := os.Getenv("CACHE_DIR"); got != "/var/cache/admitscan" {
		t.Fatalf("CACHE_DIR=%q, want file value", got)
	}
}

func TestParseEnv_Syntax(t *testing.T) {
	in := "export GOOGLE_CX=abc123\nLLM_MODEL=gpt-4o # model for expansion\nQUOTED='a # b'\nBAD KEY=x\n=novalue\n"
	got, err := ParseEnv(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseEnv error: %v", err)
	}
	want := map[string]string{"GOOGLE_CX": "abc123", "LLM_MODEL": "gpt-4o", "QUOTED": "a # b"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s=%q, want %q", k, got[k], v)
		}
	}
}

// ApplyEnvToConfig reads provider, proxy and cache settings, including the
// SEARXNG_URL and GOOGLE_CSE_ID fallbacks.
func TestApplyEnvToConfig_FromEnv(t *testing.T) {
	t.Setenv("SEARCH_PROVIDER", "google")
	t.Setenv("GOOGLE_API_KEY", "k")
	t.Setenv("GOOGLE_CX", "")
	t.Setenv("GOOGLE_CSE_ID", "cx-1")
	t.Setenv("SEARX_URL", "")
	t.Setenv("SEARXNG_URL", "http://searxng.example")
	t.Setenv("SCRAPER_PROXIES", "http://p1:8080, ,http://p2:8080")
	t.Setenv("CACHE_DIR", "/tmp/admitscan-cache")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("FETCH_ATTEMPTS", "4")
	t.Setenv("CACHE_STRICT_PERMS", "yes")

	var cfg Config
	ApplyEnvToConfig(&cfg)
	if cfg.SearchProvider != ProviderGoogle || cfg.GoogleAPIKey != "k" || cfg.GoogleCX != "cx-1" {
		t.Fatalf("google settings not applied: %+v", cfg)
	}
	if cfg.SearxURL != "http://searxng.example" {
		t.Fatalf("SearxURL=%q, want fallback from SEARXNG_URL", cfg.SearxURL)
	}
	if len(cfg.Proxies) != 2 || cfg.Proxies[1] != "http://p2:8080" {
		t.Fatalf("Proxies=%v, want two entries", cfg.Proxies)
	}
	if cfg.CacheDir != "/tmp/admitscan-cache" || cfg.CacheTTL != 2*time.Hour {
		t.Fatalf("cache settings not applied: dir=%q ttl=%s", cfg.CacheDir, cfg.CacheTTL)
	}
	if cfg.FetchAttempts != 4 || !cfg.CacheStrictPerms {
		t.Fatalf("FetchAttempts=%d CacheStrictPerms=%v", cfg.FetchAttempts, cfg.CacheStrictPerms)
	}
}

// Explicit values win over the environment.
func TestApplyEnvToConfig_ExplicitWins(t *testing.T) {
	t.Setenv("SEARX_URL", "http://env.example")
	t.Setenv("CACHE_TTL", "2h")
	cfg := Config{SearxURL: "http://flag.example", CacheTTL: time.Hour}
	ApplyEnvToConfig(&cfg)
	if cfg.SearxURL != "http://flag.example" || cfg.CacheTTL != time.Hour {
		t.Fatalf("explicit values overridden: %+v", cfg)
	}
}

func TestApplyEnvToConfig_SSLVerifyOff(t *testing.T) {
	t.Setenv("SSL_VERIFY", "false")
	cfg := Config{SSLVerify: true}
	ApplyEnvToConfig(&cfg)
	if cfg.SSLVerify {
		t.Fatalf("SSL_VERIFY=false should disable verification")
	}
}
