package source

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultQuotaThreshold is the remaining-call floor below which the governor
// suspends callers until the quota resets.
const DefaultQuotaThreshold = 10

// QuotaFunc reports the source's current quota.
type QuotaFunc func(ctx context.Context) (Quota, error)

// Governor gates outbound source calls on remaining quota. When the quota
// drops below the threshold it blocks the calling path until the reported
// reset time. The wait is a plain suspend; in-flight cancellation of an
// aggregation cycle is out of scope.
type Governor struct {
	threshold int
	check     QuotaFunc
	logger    *zap.Logger

	mu    sync.Mutex
	now   func() time.Time
	sleep func(time.Duration)
}

// NewGovernor builds a governor around a quota check. A nil logger disables
// logging.
func NewGovernor(check QuotaFunc, threshold int, logger *zap.Logger) *Governor {
	if threshold <= 0 {
		threshold = DefaultQuotaThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{
		threshold: threshold,
		check:     check,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Acquire blocks until the quota allows one more call. A failed quota check
// lets the call proceed: the source itself will reject us if we truly are out
// of budget, and a broken quota endpoint must not wedge the pipeline.
func (g *Governor) Acquire(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	quota, err := g.check(ctx)
	if err != nil {
		g.logger.Debug("quota check failed, proceeding", zap.Error(err))
		return
	}
	if quota.Remaining >= g.threshold {
		return
	}

	wait := quota.ResetAt.Sub(g.now())
	if wait <= 0 {
		return
	}

	g.logger.Warn("quota below threshold, suspending until reset",
		zap.Int("remaining", quota.Remaining),
		zap.Int("threshold", g.threshold),
		zap.Duration("wait", wait),
	)
	g.sleep(wait)
}
