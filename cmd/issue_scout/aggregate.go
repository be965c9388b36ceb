package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/issue-scout/internal/aggregate"
)

var aggregateCommand = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the issue aggregation cycle",
	Long:  "Fetches trending repositories and beginner-friendly issues from the source, classifies them, and upserts them into the store. Runs once by default; --daemon keeps a fixed-interval scheduler alive.",
	RunE:  runAggregateCmd,
}

var (
	aggConfigPath string
	aggDaemon     bool
	aggLanguage   string
)

func init() {
	aggregateCommand.Flags().StringVar(&aggConfigPath, "config", "", "Path to config.json file")
	aggregateCommand.Flags().BoolVar(&aggDaemon, "daemon", false, "Keep running on a fixed interval instead of one cycle")
	aggregateCommand.Flags().StringVar(&aggLanguage, "language", "", "Restrict trending repositories to one language")

	rootCmd.AddCommand(aggregateCommand)
}

func runAggregateCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(aggConfigPath)
	if err != nil {
		return err
	}
	if aggLanguage != "" {
		cfg.LanguageFilter = aggLanguage
	}

	log, st, src, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline := aggregate.New(src, st, cfg.LanguageFilter, log)

	if !aggDaemon {
		summary, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}
		log.Info("done",
			zap.Int("fetched", summary.Fetched),
			zap.Int("inserted", summary.Inserted),
			zap.Int("updated", summary.Updated),
			zap.Int("skipped", summary.Skipped),
			zap.Bool("failed", summary.Failed),
		)
		return nil
	}

	scheduler := aggregate.NewScheduler(pipeline,
		time.Duration(cfg.IntervalMinutes)*time.Minute,
		time.Duration(cfg.WarmupSeconds)*time.Second,
		log,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Run(ctx)
	return nil
}
