package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/admitscan/internal/app"
	"github.com/hyperifyio/admitscan/internal/discover"
)

var (
	discoverDomain  string
	discoverYear    int
	discoverMax     int
	discoverDetails bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <university> <program>",
	Short: "Look up requirements for one program and print them as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverDomain, "site", "", "Official site domain; overrides the domain table")
	discoverCmd.Flags().IntVar(&discoverYear, "year", 0, "Intake year (informational)")
	discoverCmd.Flags().IntVarP(&discoverMax, "limit", "n", 0, "Pages per branch; 0 uses max.results")
	discoverCmd.Flags().BoolVar(&discoverDetails, "details", false, "Include the source URL and category of every snippet")
	rootCmd.AddCommand(discoverCmd)
}

type detailedResult struct {
	discover.Result
	Details []discover.Snippet `json:"details"`
	Cached  bool               `json:"cached"`
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	res, err := a.Discover(ctx, discover.Request{
		University: args[0],
		Program:    args[1],
		Domain:     discoverDomain,
		Year:       discoverYear,
		MaxResults: discoverMax,
	})
	if err != nil {
		return err
	}

	var out any = res
	if discoverDetails {
		out = detailedResult{Result: res, Details: res.Details, Cached: res.Cached}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
