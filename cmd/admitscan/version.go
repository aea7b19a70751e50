package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperifyio/admitscan/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(app.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
