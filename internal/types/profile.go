// Package types provides type definitions for structured data used throughout the issue-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// SkillTier represents proficiency with a skill, from novice to expert.
type SkillTier string

const (
	TierNovice       SkillTier = "novice"
	TierIntermediate SkillTier = "intermediate"
	TierAdvanced     SkillTier = "advanced"
	TierExpert       SkillTier = "expert"
)

// tierRank orders tiers for promotion comparisons
var tierRank = map[SkillTier]int{
	TierNovice:       0,
	TierIntermediate: 1,
	TierAdvanced:     2,
	TierExpert:       3,
}

// Rank returns the ordering position of the tier (novice lowest).
// Unknown tiers rank below novice so they never win a promotion.
func (t SkillTier) Rank() int {
	if r, ok := tierRank[t]; ok {
		return r
	}
	return -1
}

// Max returns the higher of the two tiers.
func (t SkillTier) Max(other SkillTier) SkillTier {
	if other.Rank() > t.Rank() {
		return other
	}
	return t
}

// SkillOrigin records where a detected skill came from.
type SkillOrigin string

const (
	OriginArtifact SkillOrigin = "artifact"
	OriginActivity SkillOrigin = "activity"
	OriginManual   SkillOrigin = "manual"
)

// Skill represents a single normalized skill on a consumer profile
type Skill struct {
	Name       string      `json:"name"`
	Tier       SkillTier   `json:"tier"`
	Confidence float64     `json:"confidence"` // 0.0 - 1.0
	Origin     SkillOrigin `json:"origin"`
}

// TechnologyUsage represents how much of a consumer's code is written in one technology
type TechnologyUsage struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"` // share of total size, 0-100
	SizeMetric int64   `json:"size_metric"`
}

// ConsumerProfile represents a consumer's extracted skill and technology profile
type ConsumerProfile struct {
	ID                    uuid.UUID         `json:"id"`
	Login                 string            `json:"login"`
	Skills                []Skill           `json:"skills"`
	TechnologyUsage       []TechnologyUsage `json:"technology_usage"`
	PreferredDifficulties []DifficultyTier  `json:"preferred_difficulties,omitempty"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// PrefersDifficulty reports whether the profile lists the given difficulty as preferred.
func (p *ConsumerProfile) PrefersDifficulty(d DifficultyTier) bool {
	for _, pref := range p.PreferredDifficulties {
		if pref == d {
			return true
		}
	}
	return false
}

// Artifact is a repository-like input to profile extraction
type Artifact struct {
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	PrimaryLanguage string   `json:"primary_language,omitempty"`
	SizeMetric      int64    `json:"size_metric,omitempty"`
	Topics          []string `json:"topics,omitempty"`
}

// ActivityEvent is a recent-activity input to profile extraction
type ActivityEvent struct {
	ArtifactName string `json:"artifact_name,omitempty"`
	Message      string `json:"message,omitempty"` // commit-message-like text
}
