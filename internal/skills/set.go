package skills

import "github.com/jonathan/issue-scout/internal/types"

// Set accumulates skills keyed by normalized name, preserving first-insert
// order so extraction output is deterministic for identical inputs.
type Set struct {
	order  []string
	byName map[string]*types.Skill
}

// NewSet returns an empty skill set.
func NewSet() *Set {
	return &Set{byName: make(map[string]*types.Skill)}
}

// Merge inserts or merges a skill observation. The raw name is normalized
// first; empty normalizations are dropped. On merge, confidence becomes the
// arithmetic mean of the old and new values, and the tier is promoted to the
// higher of the two; a later, lower-confidence observation never downgrades
// an established tier.
func (s *Set) Merge(rawName string, tier types.SkillTier, confidence float64, origin types.SkillOrigin) {
	name := Normalize(rawName)
	if name == "" {
		return
	}

	if existing, ok := s.byName[name]; ok {
		existing.Confidence = (existing.Confidence + confidence) / 2
		existing.Tier = existing.Tier.Max(tier)
		return
	}

	s.byName[name] = &types.Skill{
		Name:       name,
		Tier:       tier,
		Confidence: confidence,
		Origin:     origin,
	}
	s.order = append(s.order, name)
}

// Len returns the number of distinct skills in the set.
func (s *Set) Len() int {
	return len(s.order)
}

// Skills returns the merged skills in first-insert order.
func (s *Set) Skills() []types.Skill {
	out := make([]types.Skill, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byName[name])
	}
	return out
}
