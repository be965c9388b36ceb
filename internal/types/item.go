package types

import "time"

// DifficultyTier buckets candidate items by how hard they look.
// It shares the tier vocabulary with SkillTier.
type DifficultyTier string

const (
	DifficultyNovice       DifficultyTier = "novice"
	DifficultyIntermediate DifficultyTier = "intermediate"
	DifficultyAdvanced     DifficultyTier = "advanced"
	DifficultyExpert       DifficultyTier = "expert"
)

// ItemState represents the lifecycle state of a candidate item at the source.
type ItemState string

const (
	ItemOpen   ItemState = "open"
	ItemClosed ItemState = "closed"
)

// Repository describes the repository a candidate item belongs to
type Repository struct {
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	Description     string `json:"description,omitempty"`
	PrimaryLanguage string `json:"primary_language,omitempty"`
	StarCount       int    `json:"star_count"`
}

// Classification holds the derived fields the item classifier produces
type Classification struct {
	Difficulty           DifficultyTier `json:"difficulty"`
	RequiredSkills       []string       `json:"required_skills"` // normalized, deduplicated
	EstimatedEffortHours int            `json:"estimated_effort_hours"`
}

// CandidateItem represents an externally-sourced work item persisted by aggregation
type CandidateItem struct {
	ExternalID      string         `json:"external_id"` // immutable source identity
	Title           string         `json:"title"`
	Body            string         `json:"body,omitempty"`
	State           ItemState      `json:"state"`
	Repository      Repository     `json:"repository"`
	Labels          []string       `json:"labels,omitempty"`
	Difficulty      DifficultyTier `json:"difficulty"`
	RequiredSkills  []string       `json:"required_skills"`
	EstimatedEffort int            `json:"estimated_effort_hours"`
	PopularityScore float64        `json:"popularity_score"` // 0.0 - 1.0
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	LastActivityAt  time.Time      `json:"last_activity_at"`
	Active          bool           `json:"active"`
}

// ItemUpdate is the explicit set of fields an aggregation upsert overwrites.
// Everything listed here is rewritten on every sight of the same external
// identity; ExternalID and first-seen CreatedAt are never touched.
type ItemUpdate struct {
	Title           string
	Body            string
	State           ItemState
	Repository      Repository
	Labels          []string
	Difficulty      DifficultyTier
	RequiredSkills  []string
	EstimatedEffort int
	PopularityScore float64
	UpdatedAt       time.Time
	LastActivityAt  time.Time
	Active          bool
}
