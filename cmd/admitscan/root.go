package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/admitscan/internal/app"
)

var (
	flagCfg      app.Config
	configPath   string
	envFiles     []string
	domainPairs  []string
	insecureTLS  bool
	debugVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "admitscan",
	Short:         "Find admission and English language requirements for university programs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	f.StringSliceVar(&envFiles, "env", nil, "Dotenv files to load before reading the environment (repeatable)")
	f.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "Verbose logging")

	f.StringVar(&flagCfg.SearchProvider, "search.provider", "", "Search provider: google, searx or file")
	f.StringVar(&flagCfg.GoogleAPIKey, "google.key", "", "Google Custom Search API key")
	f.StringVar(&flagCfg.GoogleCX, "google.cx", "", "Google Custom Search engine id")
	f.StringVar(&flagCfg.SearxURL, "searx.url", "", "SearxNG base URL")
	f.StringVar(&flagCfg.SearxKey, "searx.key", "", "SearxNG API key (optional)")
	f.StringVar(&flagCfg.SearxUA, "searx.ua", "", "Custom User-Agent for SearxNG requests")
	f.StringVar(&flagCfg.FileSearchPath, "search.file", "", "Path to JSON file for the offline file-based search provider")
	f.DurationVar(&flagCfg.SearchTimeout, "search.timeout", 0, "Timeout for a single search call")
	f.Float64Var(&flagCfg.SearchQPS, "search.qps", 0, "Search calls per second (negative disables limiting)")
	f.BoolVar(&insecureTLS, "insecure", false, "Skip TLS verification for the search client")

	f.StringVar(&flagCfg.Proxy, "fetch.proxy", "", "Proxy URL used for every page fetch")
	f.StringSliceVar(&flagCfg.Proxies, "fetch.proxies", nil, "Proxy pool; one is picked per attempt")
	f.StringSliceVar(&flagCfg.RefererHosts, "fetch.refererHosts", nil, "Hosts that receive a root Referer header")
	f.IntVar(&flagCfg.FetchAttempts, "fetch.attempts", 0, "Maximum attempts per page, including the first")
	f.DurationVar(&flagCfg.FetchTimeout, "fetch.timeout", 0, "Timeout for a single page fetch attempt")

	f.StringSliceVar(&domainPairs, "domain", nil, "University domain mapping as 'University=domain' (repeatable)")
	f.IntVar(&flagCfg.MaxResults, "max.results", 0, "Pages ranked and fetched per branch (1-10)")
	f.IntVar(&flagCfg.MaxOutput, "max.output", 0, "Cap on merged snippets; 0 derives it from max.results")
	f.IntVar(&flagCfg.MaxSnippetsPerPage, "max.snippetsPerPage", 0, "Cap on snippets taken from one page")

	f.StringVar(&flagCfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for query expansion")
	f.StringVar(&flagCfg.LLMModel, "llm.model", "", "Model name; empty disables query expansion")
	f.StringVar(&flagCfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")

	f.StringVar(&flagCfg.CacheBackend, "cache.backend", "", "Result cache: none, memory, file or sqlite")
	f.StringVar(&flagCfg.CacheDir, "cache.dir", "", "Cache directory path")
	f.DurationVar(&flagCfg.CacheTTL, "cache.ttl", 0, "Result cache lifetime")
	f.BoolVar(&flagCfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	f.BoolVar(&flagCfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	f.BoolVar(&debugVerbose, "debug-verbose", false, "Trace-level logging")
}

// loadConfig layers flags over env over the config file over defaults.
func loadConfig() (app.Config, error) {
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}
	cfg := flagCfg
	cfg.SSLVerify = true
	domains, err := parseDomainPairs(domainPairs)
	if err != nil {
		return app.Config{}, err
	}
	cfg.Domains = domains

	app.ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config file: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return app.Config{}, err
		}
	}
	app.ApplyDefaults(&cfg)
	if insecureTLS {
		cfg.SSLVerify = false
	}

	switch {
	case debugVerbose:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case cfg.Verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

func parseDomainPairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		uni, domain, ok := strings.Cut(p, "=")
		uni, domain = strings.TrimSpace(uni), strings.TrimSpace(domain)
		if !ok || uni == "" || domain == "" {
			return nil, fmt.Errorf("invalid --domain %q: want University=domain", p)
		}
		out[strings.ToLower(uni)] = domain
	}
	return out, nil
}
