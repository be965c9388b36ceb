// Package source defines the external-source client contract the aggregation
// and profile layers depend on, a GitHub REST implementation of it, and the
// rate-limit governor that gates every outbound call.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound signals that the requested entity does not exist at the source.
// Call sites map it to an empty result.
var ErrNotFound = errors.New("source: not found")

// TransientError wraps a retryable source failure (network, 5xx, throttling).
type TransientError struct {
	Op    string
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("source: transient failure during %s: %v", e.Op, e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether err is a retryable source failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Repository is a repository record as the source reports it.
type Repository struct {
	Name            string
	FullName        string
	Owner           string
	Description     string
	PrimaryLanguage string
	StarCount       int
	SizeMetric      int64
	Topics          []string
}

// Issue is a work-item record as the source reports it. PullRequest marks
// pull-request-shaped records, which aggregation skips.
type Issue struct {
	ExternalID    string
	Number        int
	Title         string
	Body          string
	State         string
	Labels        []string
	PullRequest   bool
	CommentCount  int
	ReactionCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Repository    Repository
}

// Event is a single activity event for a consumer identity.
type Event struct {
	ArtifactName string
	Message      string
}

// Quota is the source's remaining call budget.
type Quota struct {
	Remaining int
	ResetAt   time.Time
}

// IssueFilters narrows issue listing and search calls.
type IssueFilters struct {
	Labels  []string
	State   string
	PerPage int
}

// SearchResult is the payload of a broad issue search.
type SearchResult struct {
	Items      []Issue
	TotalCount int
}

// Client is the external-source capability this core requires. All calls may
// fail with a transient error or ErrNotFound; neither is fatal to callers.
type Client interface {
	FetchTrendingRepositories(ctx context.Context, languageFilter string) ([]Repository, error)
	FetchOwnedRepositories(ctx context.Context, login string) ([]Repository, error)
	FetchIssues(ctx context.Context, owner, name string, filters IssueFilters) ([]Issue, error)
	SearchIssues(ctx context.Context, query string, filters IssueFilters) (SearchResult, error)
	FetchActivityEvents(ctx context.Context, login string) ([]Event, error)
	CheckQuota(ctx context.Context) (Quota, error)
}
