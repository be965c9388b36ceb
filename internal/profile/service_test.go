package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/issue-scout/internal/source"
	"github.com/jonathan/issue-scout/internal/store"
	"github.com/jonathan/issue-scout/internal/types"
)

// stubSource is a canned source.Client for service tests.
type stubSource struct {
	repos     []source.Repository
	events    []source.Event
	reposErr  error
	eventsErr error
}

func (s *stubSource) FetchTrendingRepositories(context.Context, string) ([]source.Repository, error) {
	return nil, nil
}

func (s *stubSource) FetchOwnedRepositories(context.Context, string) ([]source.Repository, error) {
	return s.repos, s.reposErr
}

func (s *stubSource) FetchIssues(context.Context, string, string, source.IssueFilters) ([]source.Issue, error) {
	return nil, nil
}

func (s *stubSource) SearchIssues(context.Context, string, source.IssueFilters) (source.SearchResult, error) {
	return source.SearchResult{}, nil
}

func (s *stubSource) FetchActivityEvents(context.Context, string) ([]source.Event, error) {
	return s.events, s.eventsErr
}

func (s *stubSource) CheckQuota(context.Context) (source.Quota, error) {
	return source.Quota{Remaining: 5000, ResetAt: time.Now()}, nil
}

func newTestService(src source.Client) (*Service, *store.Memory) {
	mem := store.NewMemory()
	svc := NewService(src, mem, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }
	return svc, mem
}

func TestService_SyncCreatesProfile(t *testing.T) {
	src := &stubSource{
		repos: []source.Repository{
			{Name: "tool", PrimaryLanguage: "Go", SizeMetric: 3000},
		},
	}
	svc, mem := newTestService(src)

	profile, err := svc.Sync(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", profile.Login)
	assert.NotEmpty(t, profile.Skills)

	stored, err := mem.GetProfile(context.Background(), "octocat")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, profile.Skills, stored.Skills)
}

func TestService_SyncBulkReplacesSkills(t *testing.T) {
	src := &stubSource{
		repos: []source.Repository{
			{Name: "tool", PrimaryLanguage: "Go", SizeMetric: 3000},
		},
	}
	svc, _ := newTestService(src)

	ctx := context.Background()
	_, err := svc.Sync(ctx, "octocat")
	require.NoError(t, err)

	// Upstream changed languages entirely; the old skill list is replaced.
	src.repos = []source.Repository{
		{Name: "tool", PrimaryLanguage: "Rust", SizeMetric: 3000},
	}
	profile, err := svc.Sync(ctx, "octocat")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range profile.Skills {
		names[s.Name] = true
	}
	assert.True(t, names["rust"])
	assert.False(t, names["go"])
}

func TestService_SyncDegradesToDefaultsOnSourceFailure(t *testing.T) {
	src := &stubSource{
		reposErr:  &source.TransientError{Op: "repos"},
		eventsErr: &source.TransientError{Op: "events"},
	}
	svc, _ := newTestService(src)

	profile, err := svc.Sync(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Len(t, profile.Skills, 4) // default skill set
}

func TestService_SyncRequiresLogin(t *testing.T) {
	svc, _ := newTestService(&stubSource{})

	_, err := svc.Sync(context.Background(), "")
	assert.Error(t, err)
}

func TestService_AddManualSkill(t *testing.T) {
	svc, _ := newTestService(&stubSource{})
	ctx := context.Background()

	_, err := svc.Sync(ctx, "octocat")
	require.NoError(t, err)

	profile, err := svc.AddManualSkill(ctx, "octocat", "Kotlin", types.TierAdvanced)
	require.NoError(t, err)

	var kotlin *types.Skill
	for i := range profile.Skills {
		if profile.Skills[i].Name == "kotlin" {
			kotlin = &profile.Skills[i]
		}
	}
	require.NotNil(t, kotlin)
	assert.Equal(t, types.TierAdvanced, kotlin.Tier)
	assert.Equal(t, 1.0, kotlin.Confidence)
	assert.Equal(t, types.OriginManual, kotlin.Origin)
}

func TestService_AddManualSkillMergesExisting(t *testing.T) {
	svc, _ := newTestService(&stubSource{})
	ctx := context.Background()

	_, err := svc.Sync(ctx, "octocat")
	require.NoError(t, err)

	// javascript exists in the default set at novice/0.5; a manual add at
	// full confidence averages to 0.75 and promotes the tier.
	profile, err := svc.AddManualSkill(ctx, "octocat", "JS", types.TierAdvanced)
	require.NoError(t, err)

	for _, s := range profile.Skills {
		if s.Name == "javascript" {
			assert.Equal(t, types.TierAdvanced, s.Tier)
			assert.InDelta(t, 0.75, s.Confidence, 0.001)
			return
		}
	}
	t.Fatal("javascript skill missing")
}

func TestService_RemoveManualSkill(t *testing.T) {
	svc, _ := newTestService(&stubSource{})
	ctx := context.Background()

	_, err := svc.Sync(ctx, "octocat")
	require.NoError(t, err)

	profile, err := svc.RemoveManualSkill(ctx, "octocat", "git")
	require.NoError(t, err)

	for _, s := range profile.Skills {
		assert.NotEqual(t, "git", s.Name)
	}
}

func TestService_ManualSkillRequiresProfile(t *testing.T) {
	svc, _ := newTestService(&stubSource{})

	_, err := svc.AddManualSkill(context.Background(), "ghost", "go", types.TierNovice)
	assert.Error(t, err)
}
