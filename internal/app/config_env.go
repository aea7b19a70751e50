package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.SearchProvider, "SEARCH_PROVIDER")
	setString(&cfg.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&cfg.GoogleCX, "GOOGLE_CX", "GOOGLE_CSE_ID")
	// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
	setString(&cfg.SearxURL, "SEARX_URL", "SEARXNG_URL")
	setString(&cfg.SearxKey, "SEARX_KEY", "SEARXNG_KEY")
	setString(&cfg.FileSearchPath, "SEARCH_FILE")
	setString(&cfg.Proxy, "SCRAPER_PROXY")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.CacheBackend, "CACHE_BACKEND")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")

	if len(cfg.Proxies) == 0 {
		cfg.Proxies = splitList(os.Getenv("SCRAPER_PROXIES"))
	}
	if len(cfg.RefererHosts) == 0 {
		cfg.RefererHosts = splitList(os.Getenv("REFERER_HOSTS"))
	}
	if cfg.FetchAttempts == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("FETCH_ATTEMPTS"))); err == nil && n > 0 {
			cfg.FetchAttempts = n
		}
	}
	if cfg.MaxResults == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_RESULTS"))); err == nil && n > 0 {
			cfg.MaxResults = n
		}
	}
	if cfg.SearchQPS == 0 {
		if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("SEARCH_QPS")), 64); err == nil && f > 0 {
			cfg.SearchQPS = f
		}
	}

	setDuration := func(dst *time.Duration, key string) {
		if *dst != 0 {
			return
		}
		if s := os.Getenv(key); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.CacheTTL, "CACHE_TTL")
	setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")
	setDuration(&cfg.SearchTimeout, "SEARCH_TIMEOUT")

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if isTruthy(os.Getenv(envKey)) {
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	if isFalsey(os.Getenv("SSL_VERIFY")) {
		cfg.SSLVerify = false
	}
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func isFalsey(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}
