// Package aggregate orchestrates the scheduled fetch -> classify -> upsert
// cycle that keeps the candidate-item store current. One cycle runs at a
// time, enforced by an atomically-checked run flag; item processing is
// strictly sequential so the shared rate-limit governor stays meaningful.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/issue-scout/internal/classify"
	"github.com/jonathan/issue-scout/internal/source"
	"github.com/jonathan/issue-scout/internal/store"
	"github.com/jonathan/issue-scout/internal/types"
)

// ErrCycleRunning is returned when a cycle trigger arrives while another
// cycle is in flight. Triggers treat it as a no-op, not a failure.
var ErrCycleRunning = errors.New("aggregate: cycle already running")

const (
	maxAttempts = 3
	retryDelay  = 5 * time.Second

	// trendingRepoCap bounds how many trending repositories a cycle walks
	// after de-duplication.
	trendingRepoCap = 50

	// stalenessWindow is how long an item may go without activity before the
	// maintenance pass deactivates it.
	stalenessWindow = 30 * 24 * time.Hour

	// Popularity factor weights and normalizing denominators.
	popularityStarsWeight     = 0.4
	popularityCommentsWeight  = 0.3
	popularityReactionsWeight = 0.2
	popularityFreshnessWeight = 0.1

	popularityStarsDenom     = 1000.0
	popularityCommentsDenom  = 10.0
	popularityReactionsDenom = 5.0
	popularityFreshnessDays  = 30.0
)

// beginnerLabels are the source labels a per-repository issue fetch targets.
var beginnerLabels = []string{"good first issue", "help wanted"}

// Summary reports what one aggregation cycle did.
type Summary struct {
	Attempts int
	Fetched  int
	Inserted int
	Updated  int
	Skipped  int
	Failed   bool
}

// Pipeline runs aggregation cycles against a source and a store.
type Pipeline struct {
	source source.Client
	store  store.Store
	logger *zap.Logger

	languageFilter string

	running atomic.Bool

	// Injected for tests; default to the real clock.
	now   func() time.Time
	sleep func(time.Duration)
}

// New builds a pipeline. A nil logger disables logging.
func New(src source.Client, st store.Store, languageFilter string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		source:         src,
		store:          st,
		logger:         logger,
		languageFilter: languageFilter,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

// Run executes a full aggregation cycle with bounded retries. It refuses to
// overlap a running cycle, returning ErrCycleRunning immediately. Exhausting
// all attempts is not an error: partial progress stays persisted and the
// next scheduled tick retries naturally.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Summary{}, ErrCycleRunning
	}
	defer p.running.Store(false)

	var summary Summary
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		summary.Attempts = attempt

		err := p.cycle(ctx, &summary)
		if err == nil {
			p.logger.Info("aggregation cycle complete",
				zap.Int("attempt", attempt),
				zap.Int("fetched", summary.Fetched),
				zap.Int("inserted", summary.Inserted),
				zap.Int("updated", summary.Updated),
				zap.Int("skipped", summary.Skipped),
			)
			return summary, nil
		}

		p.logger.Warn("aggregation cycle attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Error(err),
		)
		if attempt < maxAttempts {
			p.sleep(retryDelay)
		}
	}

	summary.Failed = true
	p.logger.Error("aggregation cycle abandoned after retries",
		zap.Int("attempts", maxAttempts),
	)
	return summary, nil
}

// cycle performs one attempt: trending repositories, their beginner-labeled
// issues, one broad search, then sequential classify-and-upsert.
func (p *Pipeline) cycle(ctx context.Context, summary *Summary) error {
	repos, err := p.source.FetchTrendingRepositories(ctx, p.languageFilter)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			repos = nil
		} else {
			return fmt.Errorf("fetch trending repositories: %w", err)
		}
	}
	repos = dedupeRepos(repos, trendingRepoCap)

	for _, repo := range repos {
		for _, label := range beginnerLabels {
			issues, err := p.source.FetchIssues(ctx, repo.Owner, repo.Name, source.IssueFilters{
				Labels: []string{label},
				State:  "open",
			})
			if err != nil {
				if errors.Is(err, source.ErrNotFound) {
					continue
				}
				return fmt.Errorf("fetch issues for %s: %w", repo.FullName, err)
			}
			for i := range issues {
				issues[i].Repository = repo
			}
			p.processIssues(ctx, issues, summary)
		}
	}

	result, err := p.source.SearchIssues(ctx, "is:issue is:open", source.IssueFilters{
		Labels: []string{"good first issue"},
	})
	if err != nil {
		if !errors.Is(err, source.ErrNotFound) {
			return fmt.Errorf("search issues: %w", err)
		}
	} else {
		p.processIssues(ctx, result.Items, summary)
	}

	return nil
}

// processIssues classifies and upserts a batch. Malformed records are counted
// and skipped, never retried; a store failure on one item does not stop the
// rest (partial progress is retained by design).
func (p *Pipeline) processIssues(ctx context.Context, issues []source.Issue, summary *Summary) {
	now := p.now()

	for _, issue := range issues {
		summary.Fetched++

		if issue.PullRequest || issue.ExternalID == "" {
			summary.Skipped++
			continue
		}

		existing, err := p.store.FindItemByExternalID(ctx, issue.ExternalID)
		if err != nil {
			p.logger.Warn("item lookup failed", zap.String("external_id", issue.ExternalID), zap.Error(err))
			summary.Skipped++
			continue
		}

		classification := classify.Item(issue.Title, issue.Body, issue.Labels, issue.Repository.PrimaryLanguage)

		update := types.ItemUpdate{
			Title: issue.Title,
			Body:  issue.Body,
			State: itemState(issue.State),
			Repository: types.Repository{
				Name:            issue.Repository.Name,
				FullName:        issue.Repository.FullName,
				Description:     issue.Repository.Description,
				PrimaryLanguage: issue.Repository.PrimaryLanguage,
				StarCount:       issue.Repository.StarCount,
			},
			Labels:          issue.Labels,
			Difficulty:      classification.Difficulty,
			RequiredSkills:  classification.RequiredSkills,
			EstimatedEffort: classification.EstimatedEffortHours,
			PopularityScore: popularity(issue, now),
			UpdatedAt:       issue.UpdatedAt,
			LastActivityAt:  issue.UpdatedAt,
			Active:          true,
		}

		if err := p.store.UpsertItem(ctx, issue.ExternalID, issue.CreatedAt, update); err != nil {
			p.logger.Warn("item upsert failed", zap.String("external_id", issue.ExternalID), zap.Error(err))
			summary.Skipped++
			continue
		}

		if existing == nil {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}
}

// DeactivateStale flips off items whose last activity is older than the
// staleness window. It is independently triggerable and does not take the
// run guard.
func (p *Pipeline) DeactivateStale(ctx context.Context) (int64, error) {
	threshold := p.now().Add(-stalenessWindow)
	n, err := p.store.DeactivateItemsOlderThan(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("deactivate stale items: %w", err)
	}
	if n > 0 {
		p.logger.Info("deactivated stale items", zap.Int64("count", n))
	}
	return n, nil
}

// popularity is a fixed weighted sum of capped engagement signals.
func popularity(issue source.Issue, now time.Time) float64 {
	stars := capRatio(float64(issue.Repository.StarCount), popularityStarsDenom)
	comments := capRatio(float64(issue.CommentCount), popularityCommentsDenom)
	reactions := capRatio(float64(issue.ReactionCount), popularityReactionsDenom)

	ageDays := now.Sub(issue.CreatedAt).Hours() / 24
	freshness := 1 - ageDays/popularityFreshnessDays
	if freshness < 0 {
		freshness = 0
	}
	if freshness > 1 {
		freshness = 1
	}

	return popularityStarsWeight*stars +
		popularityCommentsWeight*comments +
		popularityReactionsWeight*reactions +
		popularityFreshnessWeight*freshness
}

func capRatio(value, denom float64) float64 {
	r := value / denom
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// dedupeRepos drops duplicate identities and caps the list.
func dedupeRepos(repos []source.Repository, cap int) []source.Repository {
	seen := make(map[string]bool, len(repos))
	out := make([]source.Repository, 0, len(repos))
	for _, repo := range repos {
		if repo.FullName == "" || seen[repo.FullName] {
			continue
		}
		seen[repo.FullName] = true
		out = append(out, repo)
		if len(out) == cap {
			break
		}
	}
	return out
}

func itemState(state string) types.ItemState {
	if state == "closed" {
		return types.ItemClosed
	}
	return types.ItemOpen
}
