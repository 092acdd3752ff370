package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/config"
)

var cfg *config.Config

var offline bool

var rootCmd = &cobra.Command{
	Use:   "enrich-cli",
	Short: "Dealership lead enrichment pipeline",
	Long:  "Searches the web for each dealership, classifies and fetches the best sources, extracts owner and business facts, and generates personalized outreach copy via Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use canned stub providers instead of live APIs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
