package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/admitscan/internal/app"
)

// debugsearch runs one raw query against the configured search provider and
// prints the hits, bypassing ranking and fetching.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		limit      int
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.IntVar(&limit, "n", 5, "Maximum results")
	flag.Parse()

	cfg := app.Config{SSLVerify: true}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			log.Fatal().Err(err).Msg("apply config")
		}
	}
	app.ApplyDefaults(&cfg)

	q := "Monash University Master of Information Technology entry requirements"
	if flag.NArg() > 0 {
		q = flag.Arg(0)
	}
	prov, err := app.NewProvider(cfg, &http.Client{Timeout: 20 * time.Second})
	if err != nil {
		log.Fatal().Err(err).Msg("provider")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, limit)
	if err != nil {
		log.Error().Err(err).Str("provider", prov.Name()).Msg("search failed")
	}
	for i, r := range res {
		fmt.Printf("%d. %s %s\n", i+1, r.Title, r.URL)
	}
}
