package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	userAgent      = "issue-scout/1.0"

	// trendingCap bounds how many trending repositories one cycle considers.
	trendingCap = 50
)

// GitHub implements Client against the GitHub REST API.
type GitHub struct {
	baseURL  string
	token    string
	client   *http.Client
	governor *Governor
	logger   *zap.Logger
}

// Options configures the GitHub client.
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGitHub builds a GitHub source client.
func NewGitHub(opts Options) *GitHub {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &GitHub{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		token:   opts.Token,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  opts.Logger,
	}
}

// UseGovernor attaches a rate-limit governor fed by this client's own quota
// endpoint. Every subsequent call except CheckQuota itself blocks on it.
func (g *GitHub) UseGovernor(threshold int) {
	g.governor = NewGovernor(g.CheckQuota, threshold, g.logger)
}

// Wire-format records. Only the fields this core reads are declared.

type ghRepo struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stargazers  int      `json:"stargazers_count"`
	Size        int64    `json:"size"`
	Topics      []string `json:"topics"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type ghIssue struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
	Comments    int       `json:"comments"`
	Reactions   struct {
		TotalCount int `json:"total_count"`
	} `json:"reactions"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	RepositoryURL string    `json:"repository_url"`
}

type ghEvent struct {
	Type string `json:"type"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Commits []struct {
			Message string `json:"message"`
		} `json:"commits"`
	} `json:"payload"`
}

// FetchTrendingRepositories returns recently-active, highly-starred
// repositories, optionally filtered by language, capped at trendingCap.
func (g *GitHub) FetchTrendingRepositories(ctx context.Context, languageFilter string) ([]Repository, error) {
	query := "stars:>100 pushed:>" + time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	if languageFilter != "" {
		query += " language:" + languageFilter
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(trendingCap))

	var payload struct {
		Items []ghRepo `json:"items"`
	}
	if err := g.get(ctx, "/search/repositories?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	repos := make([]Repository, 0, len(payload.Items))
	for _, r := range payload.Items {
		repos = append(repos, mapRepo(r))
	}
	return repos, nil
}

// FetchOwnedRepositories lists a consumer's public repositories.
func (g *GitHub) FetchOwnedRepositories(ctx context.Context, login string) ([]Repository, error) {
	path := fmt.Sprintf("/users/%s/repos?per_page=100&sort=updated", url.PathEscape(login))

	var payload []ghRepo
	if err := g.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	repos := make([]Repository, 0, len(payload))
	for _, r := range payload {
		repos = append(repos, mapRepo(r))
	}
	return repos, nil
}

// FetchIssues lists a repository's issues matching the filters.
func (g *GitHub) FetchIssues(ctx context.Context, owner, name string, filters IssueFilters) ([]Issue, error) {
	params := url.Values{}
	if filters.State != "" {
		params.Set("state", filters.State)
	}
	if len(filters.Labels) > 0 {
		params.Set("labels", strings.Join(filters.Labels, ","))
	}
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	params.Set("per_page", strconv.Itoa(perPage))

	path := fmt.Sprintf("/repos/%s/%s/issues?%s", url.PathEscape(owner), url.PathEscape(name), params.Encode())

	var payload []ghIssue
	if err := g.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(payload))
	for _, i := range payload {
		issue := mapIssue(i)
		issue.Repository.FullName = owner + "/" + name
		issue.Repository.Name = name
		issue.Repository.Owner = owner
		issues = append(issues, issue)
	}
	return issues, nil
}

// SearchIssues runs a broad issue search.
func (g *GitHub) SearchIssues(ctx context.Context, query string, filters IssueFilters) (SearchResult, error) {
	q := query
	for _, label := range filters.Labels {
		q += fmt.Sprintf(" label:%q", label)
	}
	if filters.State != "" {
		q += " state:" + filters.State
	}

	params := url.Values{}
	params.Set("q", q)
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = 30
	}
	params.Set("per_page", strconv.Itoa(perPage))

	var payload struct {
		TotalCount int       `json:"total_count"`
		Items      []ghIssue `json:"items"`
	}
	if err := g.get(ctx, "/search/issues?"+params.Encode(), &payload); err != nil {
		return SearchResult{}, err
	}

	items := make([]Issue, 0, len(payload.Items))
	for _, i := range payload.Items {
		issue := mapIssue(i)
		issue.Repository.FullName = fullNameFromRepoURL(i.RepositoryURL)
		if idx := strings.IndexByte(issue.Repository.FullName, '/'); idx > 0 {
			issue.Repository.Owner = issue.Repository.FullName[:idx]
			issue.Repository.Name = issue.Repository.FullName[idx+1:]
		}
		items = append(items, issue)
	}
	return SearchResult{Items: items, TotalCount: payload.TotalCount}, nil
}

// FetchActivityEvents lists a consumer's recent public activity. Push events
// yield one Event per commit message; other event types yield one Event
// carrying only the artifact name.
func (g *GitHub) FetchActivityEvents(ctx context.Context, login string) ([]Event, error) {
	path := fmt.Sprintf("/users/%s/events?per_page=100", url.PathEscape(login))

	var payload []ghEvent
	if err := g.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	var events []Event
	for _, e := range payload {
		name := repoShortName(e.Repo.Name)
		if e.Type == "PushEvent" && len(e.Payload.Commits) > 0 {
			for _, c := range e.Payload.Commits {
				events = append(events, Event{ArtifactName: name, Message: c.Message})
			}
			continue
		}
		events = append(events, Event{ArtifactName: name})
	}
	return events, nil
}

// CheckQuota reports the core API quota. It bypasses the governor: the
// governor itself calls it.
func (g *GitHub) CheckQuota(ctx context.Context) (Quota, error) {
	var payload struct {
		Resources struct {
			Core struct {
				Remaining int   `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}
	if err := g.doGet(ctx, "/rate_limit", &payload); err != nil {
		return Quota{}, err
	}
	return Quota{
		Remaining: payload.Resources.Core.Remaining,
		ResetAt:   time.Unix(payload.Resources.Core.Reset, 0),
	}, nil
}

// get runs a governed GET against the API.
func (g *GitHub) get(ctx context.Context, path string, out any) error {
	if g.governor != nil {
		g.governor.Acquire(ctx)
	}
	return g.doGet(ctx, path, out)
}

// doGet executes the request and maps status codes onto the package's error
// taxonomy: 404 -> ErrNotFound, everything else non-2xx -> TransientError.
func (g *GitHub) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return &TransientError{Op: "GET " + path, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransientError{
			Op:    "GET " + path,
			Cause: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Op: "GET " + path, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func mapRepo(r ghRepo) Repository {
	return Repository{
		Name:            r.Name,
		FullName:        r.FullName,
		Owner:           r.Owner.Login,
		Description:     r.Description,
		PrimaryLanguage: r.Language,
		StarCount:       r.Stargazers,
		SizeMetric:      r.Size,
		Topics:          r.Topics,
	}
}

func mapIssue(i ghIssue) Issue {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.Name)
	}
	var externalID string
	if i.ID != 0 {
		externalID = strconv.FormatInt(i.ID, 10)
	}
	return Issue{
		ExternalID:    externalID,
		Number:        i.Number,
		Title:         i.Title,
		Body:          i.Body,
		State:         i.State,
		Labels:        labels,
		PullRequest:   i.PullRequest != nil,
		CommentCount:  i.Comments,
		ReactionCount: i.Reactions.TotalCount,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// fullNameFromRepoURL extracts "owner/name" from an API repository URL.
func fullNameFromRepoURL(repoURL string) string {
	const marker = "/repos/"
	idx := strings.Index(repoURL, marker)
	if idx < 0 {
		return ""
	}
	return repoURL[idx+len(marker):]
}

// repoShortName strips the owner prefix from "owner/name".
func repoShortName(fullName string) string {
	if idx := strings.IndexByte(fullName, '/'); idx >= 0 {
		return fullName[idx+1:]
	}
	return fullName
}
