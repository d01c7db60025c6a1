// Package main is the entry point for the downdetector CLI.
//
// Usage:
//
//	downdetector serve                # monitor sites from the default config
//	downdetector serve -c my.toml     # monitor sites from an explicit config
//	downdetector check                # probe every site once and exit
//	downdetector validate             # check the config without running
//	downdetector version              # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "downdetector",
	Short: "Website uptime monitor with Discord alerts",
	Long: `downdetector probes HTTP(S) endpoints on a fixed schedule and posts a
Discord webhook message whenever a site goes down or comes back up.

Quick start:
  1. Run: downdetector serve
     (a default config is created under your user config directory)
  2. Add site URLs to the [sites] table of that file
  3. Optionally set webhook_url, or the WEBHOOK_URL environment
     variable, to enable notifications`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("downdetector %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"path to config file (default: per-user config dir)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}
