// Package classify derives difficulty, required skills, and an effort
// estimate for a candidate item from its text, labels, and repository
// language. All heuristics are fixed tables; classification never fails
// outward; on any internal error it degrades to a fixed fallback.
package classify

import (
	"regexp"
	"strings"

	"github.com/jonathan/issue-scout/internal/skills"
	"github.com/jonathan/issue-scout/internal/types"
)

// Base effort hours per difficulty tier, adjusted by body length and clamped.
const (
	effortNovice       = 2
	effortIntermediate = 4
	effortAdvanced     = 6
	effortExpert       = 8

	effortMin = 1
	effortMax = 24

	longBodyWords  = 300
	shortBodyWords = 50
)

// skillPattern maps a regex over title+body to a required-skill category.
type skillPattern struct {
	re    *regexp.Regexp
	skill string
}

// skillPatterns are the fixed keyword->skill category mappings applied to item text.
var skillPatterns = []skillPattern{
	{regexp.MustCompile(`\b(react|vue|angular|svelte)\b`), "frontend"},
	{regexp.MustCompile(`\b(node|express|django|flask)\b`), "backend"},
	{regexp.MustCompile(`\b(mongodb|mysql|postgresql|postgres|sqlite)\b`), "database"},
	{regexp.MustCompile(`\b(android|ios|flutter|react native)\b`), "mobile"},
	{regexp.MustCompile(`\b(docker|kubernetes|terraform|ansible)\b`), "devops"},
	{regexp.MustCompile(`\b(test|tests|testing|jest|pytest)\b`), "testing"},
	{regexp.MustCompile(`\b(docs|documentation|readme|tutorial)\b`), "documentation"},
	{regexp.MustCompile(`\b(tensorflow|pytorch|machine learning|data science)\b`), "machine-learning"},
	{regexp.MustCompile(`\b(api|rest|graphql|grpc)\b`), "api"},
}

var (
	noviceTextRe   = regexp.MustCompile(`\b(easy|simple|beginner)\b`)
	advancedTextRe = regexp.MustCompile(`\b(advanced|complex)\b`)
)

// Fallback is the classification returned when anything goes wrong internally.
func Fallback() types.Classification {
	return types.Classification{
		Difficulty:           types.DifficultyIntermediate,
		RequiredSkills:       []string{},
		EstimatedEffortHours: effortIntermediate,
	}
}

// Item classifies a candidate item. It never panics or errors: classification
// degrades to Fallback so a single malformed item cannot abort an aggregation
// cycle.
func Item(title, body string, labels []string, primaryLanguage string) (c types.Classification) {
	defer func() {
		if r := recover(); r != nil {
			c = Fallback()
		}
	}()

	text := strings.ToLower(title + " " + body)

	c.Difficulty = difficulty(text, labels)
	c.RequiredSkills = requiredSkills(text, labels, primaryLanguage)
	c.EstimatedEffortHours = estimateEffort(c.Difficulty, body)
	return c
}

// difficulty derives the tier. Label overrides take precedence over text
// keywords; the default is intermediate.
func difficulty(text string, labels []string) types.DifficultyTier {
	for _, label := range labels {
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "good first issue":
			return types.DifficultyNovice
		case "help wanted":
			return types.DifficultyIntermediate
		}
	}

	if noviceTextRe.MatchString(text) {
		return types.DifficultyNovice
	}
	if advancedTextRe.MatchString(text) {
		return types.DifficultyAdvanced
	}
	return types.DifficultyIntermediate
}

// requiredSkills unions pattern categories, normalized labels, and the
// normalized repository language into a deduplicated, ordered list.
func requiredSkills(text string, labels []string, primaryLanguage string) []string {
	seen := make(map[string]bool)
	out := []string{}

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	for _, p := range skillPatterns {
		if p.re.MatchString(text) {
			add(p.skill)
		}
	}
	for _, label := range labels {
		add(skills.Normalize(label))
	}
	add(skills.Normalize(primaryLanguage))

	return out
}

// estimateEffort computes hours from the difficulty base with word-count
// adjustments, clamped to [effortMin, effortMax].
func estimateEffort(d types.DifficultyTier, body string) int {
	hours := effortIntermediate
	switch d {
	case types.DifficultyNovice:
		hours = effortNovice
	case types.DifficultyIntermediate:
		hours = effortIntermediate
	case types.DifficultyAdvanced:
		hours = effortAdvanced
	case types.DifficultyExpert:
		hours = effortExpert
	}

	words := len(strings.Fields(body))
	if words > longBodyWords {
		hours += 2
	} else if words < shortBodyWords {
		hours--
	}

	if hours < effortMin {
		hours = effortMin
	}
	if hours > effortMax {
		hours = effortMax
	}
	return hours
}
