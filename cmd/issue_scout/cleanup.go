package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/issue-scout/internal/aggregate"
)

var cleanupCommand = &cobra.Command{
	Use:   "cleanup",
	Short: "Deactivate items with no recent activity",
	Long:  "Deactivates stored items whose last activity is older than the staleness window. Independent of the aggregation cycle; safe to run while one is in flight.",
	RunE:  runCleanupCmd,
}

var cleanupConfigPath string

func init() {
	cleanupCommand.Flags().StringVar(&cleanupConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(cleanupCommand)
}

func runCleanupCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cleanupConfigPath)
	if err != nil {
		return err
	}

	log, st, src, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline := aggregate.New(src, st, cfg.LanguageFilter, log)
	n, err := pipeline.DeactivateStale(ctx)
	if err != nil {
		return err
	}

	log.Info("cleanup complete", zap.Int64("deactivated", n))
	return nil
}
