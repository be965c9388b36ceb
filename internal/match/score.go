// Package match computes compatibility scores between consumer profiles and
// candidate items. Scoring is a pure function over its inputs: no I/O, no
// persistence, safe to call concurrently.
package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/issue-scout/internal/types"
)

// Factor weights. A factor whose required input is absent is skipped and its
// weight excluded from the normalizing denominator.
const (
	languageWeight   = 0.4
	skillWeight      = 0.3
	difficultyWeight = 0.2
	freshnessWeight  = 0.1

	// freshnessWindowDays is the linear decay horizon for item age.
	freshnessWindowDays = 30.0
)

// Score computes the weighted compatibility score between a profile and an
// item, in [0,1]. The language factor applies when the item's repository has
// a language; the skill factor when the item requires skills; the difficulty
// factor when the profile declares preferred difficulties; freshness always
// applies. The result is the weighted sum divided by the sum of applicable
// weights, or 0 if nothing is applicable.
func Score(profile *types.ConsumerProfile, item *types.CandidateItem, now time.Time) float64 {
	weighted := 0.0
	total := 0.0

	if item.Repository.PrimaryLanguage != "" {
		weighted += languageWeight * languageFactor(profile, item)
		total += languageWeight
	}
	if len(item.RequiredSkills) > 0 {
		weighted += skillWeight * skillFactor(profile, item)
		total += skillWeight
	}
	if len(profile.PreferredDifficulties) > 0 {
		weighted += difficultyWeight * difficultyFactor(profile, item)
		total += difficultyWeight
	}
	weighted += freshnessWeight * freshnessFactor(item, now)
	total += freshnessWeight

	if total == 0 {
		return 0
	}

	score := weighted / total
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Reasons returns human-readable justifications for the factors that
// positively matched, in factor order. An empty list is valid: it means no
// factor matched.
func Reasons(profile *types.ConsumerProfile, item *types.CandidateItem) []string {
	reasons := []string{}

	if item.Repository.PrimaryLanguage != "" {
		if usage, ok := lookupUsage(profile, item.Repository.PrimaryLanguage); ok {
			reasons = append(reasons, fmt.Sprintf("You use %s in %.0f%% of your code", usage.Name, usage.Percentage))
		}
	}

	if overlap := overlappingSkills(profile, item); len(overlap) > 0 {
		reasons = append(reasons, fmt.Sprintf("Matches your skills: %s", strings.Join(overlap, ", ")))
	}

	if profile.PrefersDifficulty(item.Difficulty) {
		reasons = append(reasons, fmt.Sprintf("Matches your preferred difficulty (%s)", item.Difficulty))
	}

	return reasons
}

// languageFactor contributes the profile's usage share of the item's language,
// capped at 1. A missing usage entry still counts the factor, contributing 0.
func languageFactor(profile *types.ConsumerProfile, item *types.CandidateItem) float64 {
	usage, ok := lookupUsage(profile, item.Repository.PrimaryLanguage)
	if !ok {
		return 0
	}
	f := usage.Percentage / 100
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// skillFactor is the fraction of the item's required skills present in the
// profile's skill names.
func skillFactor(profile *types.ConsumerProfile, item *types.CandidateItem) float64 {
	return float64(len(overlappingSkills(profile, item))) / float64(len(item.RequiredSkills))
}

func difficultyFactor(profile *types.ConsumerProfile, item *types.CandidateItem) float64 {
	if profile.PrefersDifficulty(item.Difficulty) {
		return 1
	}
	return 0
}

// freshnessFactor decays linearly from 1 at creation to 0 at the window edge.
func freshnessFactor(item *types.CandidateItem, now time.Time) float64 {
	ageDays := now.Sub(item.CreatedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	f := 1 - ageDays/freshnessWindowDays
	if f < 0 {
		return 0
	}
	return f
}

// lookupUsage finds the profile's technology usage for a language,
// case-insensitively on normalized-name equality.
func lookupUsage(profile *types.ConsumerProfile, language string) (types.TechnologyUsage, bool) {
	want := strings.ToLower(language)
	for _, usage := range profile.TechnologyUsage {
		if strings.ToLower(usage.Name) == want {
			return usage, true
		}
	}
	return types.TechnologyUsage{}, false
}

// overlappingSkills lists the item's required skills that the profile has,
// preserving the item's skill order.
func overlappingSkills(profile *types.ConsumerProfile, item *types.CandidateItem) []string {
	have := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		have[strings.ToLower(s.Name)] = true
	}

	var overlap []string
	for _, required := range item.RequiredSkills {
		if have[strings.ToLower(required)] {
			overlap = append(overlap, required)
		}
	}
	return overlap
}
