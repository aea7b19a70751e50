package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/admitscan/internal/app"
	"github.com/hyperifyio/admitscan/internal/server"
)

var (
	serveAddr    string
	serveTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /scrape over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "listen", "", "Listen address; overrides LISTEN_ADDR and the config file")
	serveCmd.Flags().DurationVar(&serveTimeout, "request.timeout", 2*time.Minute, "Upper bound for one discovery request")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if serveAddr != "" {
		flagCfg.ListenAddr = serveAddr
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	srv := &server.Server{Discoverer: a, Timeout: serveTimeout}
	return server.ListenAndServe(ctx, cfg.ListenAddr, srv.Handler())
}
