package types

// MatchResult pairs a candidate item with its computed compatibility score.
// Results are ephemeral: they are computed per ranking request and never persisted.
type MatchResult struct {
	Item    CandidateItem `json:"item"`
	Score   float64       `json:"score"` // 0.0 - 1.0
	Reasons []string      `json:"reasons,omitempty"`
}
