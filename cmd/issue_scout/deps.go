package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/issue-scout/internal/config"
	"github.com/jonathan/issue-scout/internal/logger"
	"github.com/jonathan/issue-scout/internal/source"
	"github.com/jonathan/issue-scout/internal/store"
)

// loadConfig resolves the effective config: file values (if --config given),
// then environment fallbacks for anything still empty.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(*config.FromEnv()), nil
}

// buildDeps wires the process-wide collaborators from config. The store is
// Postgres when a database URL is configured, otherwise in-memory (useful for
// one-shot local runs). The returned cleanup is safe to call once.
func buildDeps(ctx context.Context, cfg config.Config) (*zap.Logger, store.Store, *source.GitHub, func(), error) {
	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	var (
		st      store.Store
		cleanup = func() { _ = log.Sync() }
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, nil, nil, err
		}
		st = pg
		cleanup = func() {
			pg.Close()
			_ = log.Sync()
		}
	} else {
		log.Warn("no database configured, using in-memory store")
		st = store.NewMemory()
	}

	src := source.NewGitHub(source.Options{
		BaseURL: cfg.SourceURL,
		Token:   cfg.SourceToken,
		Logger:  log,
	})
	src.UseGovernor(cfg.QuotaThreshold)

	return log, st, src, cleanup, nil
}
