package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/excoffierleonard/downdetector/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file without monitoring",
	Long: `Parse and validate the configuration, then print a short summary.

Exit codes:
  0 - config is valid
  1 - config is invalid (details on stderr)`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, err := config.ResolvePath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	fmt.Println("✔ config is valid")
	fmt.Printf("  File:           %s\n", path)
	fmt.Printf("  Sites:          %d\n", len(cfg.Targets()))
	fmt.Printf("  Check interval: %ds\n", cfg.Options.CheckIntervalSecs)
	fmt.Printf("  Timeout:        %ds\n", cfg.Options.TimeoutSecs)
	if cfg.Options.WebhookURL != "" {
		fmt.Printf("  Webhook:        set\n")
	} else {
		fmt.Printf("  Webhook:        not set (notifications disabled)\n")
	}
	if id := cfg.MentionID(); id != "" {
		fmt.Printf("  Mention:        <@%s>\n", id)
	}
	if cfg.API.Addr != "" {
		fmt.Printf("  Status API:     %s\n", cfg.API.Addr)
	}
	return nil
}
