package aggregate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultInterval is how often a scheduled cycle fires.
	DefaultInterval = 30 * time.Minute

	// DefaultWarmup is the delay before the first startup cycle.
	DefaultWarmup = 10 * time.Second
)

// Scheduler triggers aggregation cycles on a fixed interval, plus one
// warm-up-delayed run at startup. Overlap is impossible regardless of timer
// behavior: the pipeline's own run guard refuses concurrent cycles.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	warmup   time.Duration
	logger   *zap.Logger
}

// NewScheduler builds a scheduler around a pipeline. Non-positive durations
// fall back to the defaults.
func NewScheduler(p *Pipeline, interval, warmup time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if warmup <= 0 {
		warmup = DefaultWarmup
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		pipeline: p,
		interval: interval,
		warmup:   warmup,
		logger:   logger,
	}
}

// Run blocks until the context is canceled, firing the warm-up cycle first
// and then one cycle per interval. Cycle failures are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started",
		zap.Duration("interval", s.interval),
		zap.Duration("warmup", s.warmup),
	)

	warmup := time.NewTimer(s.warmup)
	defer warmup.Stop()

	select {
	case <-ctx.Done():
		return
	case <-warmup.C:
		s.trigger(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	if _, err := s.pipeline.Run(ctx); err != nil {
		if errors.Is(err, ErrCycleRunning) {
			s.logger.Debug("cycle still running, tick skipped")
			return
		}
		s.logger.Error("scheduled cycle failed", zap.Error(err))
	}
}
