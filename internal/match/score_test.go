package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/issue-scout/internal/types"
)

var scoreNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func pythonProfile() *types.ConsumerProfile {
	return &types.ConsumerProfile{
		Login: "octocat",
		Skills: []types.Skill{
			{Name: "python", Tier: types.TierAdvanced, Confidence: 0.9, Origin: types.OriginArtifact},
		},
		TechnologyUsage: []types.TechnologyUsage{
			{Name: "python", Percentage: 80, SizeMetric: 8000},
		},
	}
}

func pythonItem(createdAt time.Time) *types.CandidateItem {
	return &types.CandidateItem{
		ExternalID:     "item-1",
		Title:          "Fix parser",
		Repository:     types.Repository{FullName: "acme/parser", PrimaryLanguage: "python"},
		RequiredSkills: []string{"python"},
		Difficulty:     types.DifficultyIntermediate,
		CreatedAt:      createdAt,
	}
}

func TestScore_EndToEndWeighting(t *testing.T) {
	profile := pythonProfile()
	// Declared but unmatched preference keeps the difficulty factor in the
	// denominator while contributing zero.
	profile.PreferredDifficulties = []types.DifficultyTier{types.DifficultyAdvanced}
	item := pythonItem(scoreNow)

	score := Score(profile, item, scoreNow)

	// (0.8*0.4 + 1.0*0.3 + 0*0.2 + 1.0*0.1) / 1.0
	assert.InDelta(t, 0.62, score, 0.001)
}

func TestScore_FreshnessOnly(t *testing.T) {
	profile := &types.ConsumerProfile{Login: "nobody"}
	item := &types.CandidateItem{
		ExternalID: "item-2",
		CreatedAt:  scoreNow.Add(-15 * 24 * time.Hour), // half the window
	}

	score := Score(profile, item, scoreNow)

	// No language, no required skills, no preferred difficulties: the score
	// is exactly the freshness factor value.
	assert.InDelta(t, 0.5, score, 0.001)
}

func TestScore_Bounds(t *testing.T) {
	profile := pythonProfile()
	profile.TechnologyUsage[0].Percentage = 250 // capped at 1.0 contribution

	score := Score(profile, pythonItem(scoreNow), scoreNow)

	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_StaleItemHasZeroFreshness(t *testing.T) {
	profile := &types.ConsumerProfile{Login: "nobody"}
	item := &types.CandidateItem{
		ExternalID: "item-3",
		CreatedAt:  scoreNow.Add(-90 * 24 * time.Hour),
	}

	assert.Equal(t, 0.0, Score(profile, item, scoreNow))
}

func TestScore_LanguageCountedButZeroWhenProfileHasNoUsage(t *testing.T) {
	profile := &types.ConsumerProfile{Login: "nobody"}
	item := pythonItem(scoreNow)
	item.RequiredSkills = nil

	score := Score(profile, item, scoreNow)

	// Language factor applies (item has a language) but contributes 0, so the
	// score is freshness-weighted only: (0*0.4 + 1*0.1) / 0.5.
	assert.InDelta(t, 0.2, score, 0.001)
}

func TestScore_PartialSkillOverlap(t *testing.T) {
	profile := pythonProfile()
	item := pythonItem(scoreNow)
	item.Repository.PrimaryLanguage = ""
	item.RequiredSkills = []string{"python", "django", "postgresql", "docker"}

	score := Score(profile, item, scoreNow)

	// (0.25*0.3 + 1*0.1) / 0.4
	assert.InDelta(t, 0.4375, score, 0.001)
}

func TestReasons_AllFactorsMatch(t *testing.T) {
	profile := pythonProfile()
	profile.PreferredDifficulties = []types.DifficultyTier{types.DifficultyIntermediate}
	item := pythonItem(scoreNow)

	reasons := Reasons(profile, item)

	assert.Len(t, reasons, 3)
	assert.Contains(t, reasons[0], "python")
	assert.Contains(t, reasons[1], "python")
	assert.Contains(t, reasons[2], "intermediate")
}

func TestReasons_EmptyWhenNothingMatches(t *testing.T) {
	profile := &types.ConsumerProfile{Login: "nobody"}
	item := pythonItem(scoreNow)

	assert.Empty(t, Reasons(profile, item))
}

func TestReasons_CaseInsensitiveSkillMatch(t *testing.T) {
	profile := pythonProfile()
	item := pythonItem(scoreNow)
	item.Repository.PrimaryLanguage = "Python"

	reasons := Reasons(profile, item)

	assert.NotEmpty(t, reasons)
}

func TestRank_FiltersAndSorts(t *testing.T) {
	profile := pythonProfile()

	fresh := *pythonItem(scoreNow)
	fresh.ExternalID = "fresh"
	older := *pythonItem(scoreNow.Add(-20 * 24 * time.Hour))
	older.ExternalID = "older"
	irrelevant := types.CandidateItem{
		ExternalID: "stale",
		CreatedAt:  scoreNow.Add(-90 * 24 * time.Hour),
	}

	results := Rank(profile, []types.CandidateItem{older, irrelevant, fresh}, scoreNow)

	assert.Len(t, results, 2)
	assert.Equal(t, "fresh", results[0].Item.ExternalID)
	assert.Equal(t, "older", results[1].Item.ExternalID)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.2)
	}
}
