package match

import (
	"sort"
	"time"

	"github.com/jonathan/issue-scout/internal/types"
)

// minScore is the caller-side relevance floor: results scoring at or below it
// are dropped before ranking.
const minScore = 0.2

// Rank scores every item against the profile, filters out weak matches, and
// returns the remainder sorted by score descending. Items are not mutated and
// nothing is persisted.
func Rank(profile *types.ConsumerProfile, items []types.CandidateItem, now time.Time) []types.MatchResult {
	results := make([]types.MatchResult, 0, len(items))
	for _, item := range items {
		score := Score(profile, &item, now)
		if score <= minScore {
			continue
		}
		results = append(results, types.MatchResult{
			Item:    item,
			Score:   score,
			Reasons: Reasons(profile, &item),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}
