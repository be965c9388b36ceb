package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHub(t *testing.T, handler http.Handler) *GitHub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGitHub(Options{BaseURL: srv.URL, Token: "test-token"})
}

func TestGitHub_FetchIssues(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/scout/issues", r.URL.Path)
		assert.Equal(t, "good first issue", r.URL.Query().Get("labels"))
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`[
			{
				"id": 101,
				"number": 7,
				"title": "Fix docs typo",
				"body": "Small fix in the readme.",
				"state": "open",
				"labels": [{"name": "good first issue"}, {"name": "documentation"}],
				"comments": 2,
				"reactions": {"total_count": 3},
				"created_at": "2025-06-01T00:00:00Z",
				"updated_at": "2025-06-10T00:00:00Z"
			},
			{
				"id": 102,
				"number": 8,
				"title": "A pull request",
				"state": "open",
				"pull_request": {}
			}
		]`))
	}))

	issues, err := client.FetchIssues(context.Background(), "octo", "scout", IssueFilters{
		Labels: []string{"good first issue"},
		State:  "open",
	})
	require.NoError(t, err)
	require.Len(t, issues, 2)

	first := issues[0]
	assert.Equal(t, "101", first.ExternalID)
	assert.Equal(t, "Fix docs typo", first.Title)
	assert.Equal(t, []string{"good first issue", "documentation"}, first.Labels)
	assert.Equal(t, 2, first.CommentCount)
	assert.Equal(t, 3, first.ReactionCount)
	assert.False(t, first.PullRequest)
	assert.Equal(t, "octo/scout", first.Repository.FullName)

	assert.True(t, issues[1].PullRequest)
}

func TestGitHub_FetchTrendingRepositories(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "language:go")
		assert.Contains(t, r.URL.Query().Get("q"), "stars:>100")

		_, _ = w.Write([]byte(`{
			"items": [
				{
					"name": "scout",
					"full_name": "octo/scout",
					"language": "Go",
					"stargazers_count": 1200,
					"topics": ["cli", "github"],
					"owner": {"login": "octo"}
				}
			]
		}`))
	}))

	repos, err := client.FetchTrendingRepositories(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "octo/scout", repos[0].FullName)
	assert.Equal(t, "octo", repos[0].Owner)
	assert.Equal(t, 1200, repos[0].StarCount)
	assert.Equal(t, []string{"cli", "github"}, repos[0].Topics)
}

func TestGitHub_SearchIssuesResolvesRepository(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), `label:"good first issue"`)

		_, _ = w.Write([]byte(`{
			"total_count": 1,
			"items": [
				{
					"id": 55,
					"title": "Add examples",
					"state": "open",
					"repository_url": "https://api.github.com/repos/octo/scout"
				}
			]
		}`))
	}))

	result, err := client.SearchIssues(context.Background(), "is:issue is:open", IssueFilters{
		Labels: []string{"good first issue"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "octo/scout", result.Items[0].Repository.FullName)
	assert.Equal(t, "octo", result.Items[0].Repository.Owner)
	assert.Equal(t, "scout", result.Items[0].Repository.Name)
}

func TestGitHub_FetchActivityEventsExpandsPushCommits(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/events", r.URL.Path)

		_, _ = w.Write([]byte(`[
			{
				"type": "PushEvent",
				"repo": {"name": "octocat/scout"},
				"payload": {"commits": [{"message": "fix parser"}, {"message": "add tests"}]}
			},
			{
				"type": "WatchEvent",
				"repo": {"name": "octocat/other"}
			}
		]`))
	}))

	events, err := client.FetchActivityEvents(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, Event{ArtifactName: "scout", Message: "fix parser"}, events[0])
	assert.Equal(t, Event{ArtifactName: "scout", Message: "add tests"}, events[1])
	assert.Equal(t, Event{ArtifactName: "other"}, events[2])
}

func TestGitHub_CheckQuota(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rate_limit", r.URL.Path)
		_, _ = w.Write([]byte(`{"resources": {"core": {"remaining": 42, "reset": 1750000000}}}`))
	}))

	quota, err := client.CheckQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, quota.Remaining)
	assert.Equal(t, time.Unix(1750000000, 0), quota.ResetAt)
}

func TestGitHub_NotFoundMapsToSentinel(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchOwnedRepositories(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitHub_ServerErrorIsTransient(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchIssues(context.Background(), "octo", "scout", IssueFilters{})
	assert.True(t, IsTransient(err))
}

func TestGitHub_MalformedBodyIsTransient(t *testing.T) {
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))

	_, err := client.FetchTrendingRepositories(context.Background(), "")
	assert.True(t, IsTransient(err))
}

func TestGitHub_GovernorGatesCalls(t *testing.T) {
	var quotaCalls atomic.Int32
	client := newTestGitHub(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rate_limit":
			quotaCalls.Add(1)
			_, _ = w.Write([]byte(`{"resources": {"core": {"remaining": 5000, "reset": 1750000000}}}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	client.UseGovernor(10)

	_, err := client.FetchOwnedRepositories(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, int32(1), quotaCalls.Load())

	// CheckQuota itself must not recurse through the governor.
	_, err = client.CheckQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), quotaCalls.Load())
}
