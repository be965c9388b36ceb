// Package profile builds consumer skill profiles from repository metadata,
// free-text bios, and recent activity events. Extraction is deterministic and
// side-effect-free; persisting the result is the caller's job.
package profile

import (
	"strings"

	"github.com/jonathan/issue-scout/internal/skills"
	"github.com/jonathan/issue-scout/internal/types"
)

// Confidence assigned to each signal source.
const (
	confBio          = 0.6
	confLanguage     = 0.8
	confTopic        = 0.6
	confNameScan     = 0.7
	confTaskKeyword  = 0.5
	confNamePattern  = 0.4
	confDefaultSkill = 0.5
)

// Language tier thresholds: accumulated artifact count and total size.
const (
	expertCount   = 10
	expertSize    = 10000
	advancedCount = 5
	advancedSize  = 5000
	intermCount   = 3
	intermSize    = 1000
)

// taskKeywords are scanned against commit-message-like activity text.
var taskKeywords = []string{
	"api", "database", "frontend", "backend", "ui", "testing",
	"deployment", "security", "performance", "bug", "feature",
}

// namePatterns maps artifact-name substrings to skill hints.
var namePatterns = []struct {
	substring string
	skills    []string
}{
	{"web", []string{"html", "css", "javascript"}},
	{"api", []string{"api", "backend"}},
	{"app", []string{"mobile"}},
	{"bot", []string{"automation"}},
	{"data", []string{"python", "sql"}},
	{"ml", []string{"python", "machine-learning"}},
	{"infra", []string{"docker", "devops"}},
}

// Input carries everything extraction reads for one consumer.
type Input struct {
	Login     string
	Bio       string
	Artifacts []types.Artifact
	Events    []types.ActivityEvent
}

// Output is the extracted skill and technology-usage lists.
type Output struct {
	Skills          []types.Skill
	TechnologyUsage []types.TechnologyUsage
}

// defaultSkills is the fallback skill set used when nothing was detected or
// extraction failed internally.
func defaultSkills() []types.Skill {
	names := []string{"javascript", "html", "css", "git"}
	out := make([]types.Skill, 0, len(names))
	for _, name := range names {
		out = append(out, types.Skill{
			Name:       name,
			Tier:       types.TierNovice,
			Confidence: confDefaultSkill,
			Origin:     types.OriginArtifact,
		})
	}
	return out
}

// Extract derives a consumer's skills and technology-usage percentages.
// It never fails outward: on any internal error it returns the default
// skill set alone.
func Extract(in Input) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			out = Output{Skills: defaultSkills()}
		}
	}()

	set := skills.NewSet()

	// Accumulated per-language artifact stats drive both tier derivation and
	// technology-usage percentages.
	type langStats struct {
		count     int
		totalSize int64
	}
	stats := make(map[string]*langStats)
	var langOrder []string

	if len(in.Artifacts) == 0 {
		for _, tech := range skills.ScanText(in.Bio) {
			set.Merge(tech, types.TierNovice, confBio, types.OriginArtifact)
		}
	}

	for _, artifact := range in.Artifacts {
		if artifact.PrimaryLanguage != "" {
			lang := skills.Normalize(artifact.PrimaryLanguage)
			if lang != "" {
				if _, ok := stats[lang]; !ok {
					stats[lang] = &langStats{}
					langOrder = append(langOrder, lang)
				}
				stats[lang].count++
				stats[lang].totalSize += artifact.SizeMetric
			}
		}

		for _, topic := range artifact.Topics {
			set.Merge(topic, types.TierIntermediate, confTopic, types.OriginArtifact)
		}

		for _, tech := range skills.ScanText(artifact.Name + " " + artifact.Description) {
			set.Merge(tech, types.TierIntermediate, confNameScan, types.OriginArtifact)
		}
	}

	// Language skills merge after accumulation so the tier reflects the full
	// artifact list, not a prefix of it.
	for _, lang := range langOrder {
		s := stats[lang]
		set.Merge(lang, languageTier(s.count, s.totalSize), confLanguage, types.OriginArtifact)
	}

	for _, event := range in.Events {
		message := strings.ToLower(event.Message)
		for _, keyword := range taskKeywords {
			if strings.Contains(message, keyword) {
				set.Merge(keyword, types.TierIntermediate, confTaskKeyword, types.OriginActivity)
			}
		}

		artifactName := strings.ToLower(event.ArtifactName)
		for _, pattern := range namePatterns {
			if strings.Contains(artifactName, pattern.substring) {
				for _, skill := range pattern.skills {
					set.Merge(skill, types.TierNovice, confNamePattern, types.OriginActivity)
				}
			}
		}
	}

	extracted := set.Skills()
	if len(extracted) == 0 {
		extracted = defaultSkills()
	}
	normalizeTiers(extracted)

	return Output{
		Skills:          extracted,
		TechnologyUsage: technologyUsage(langOrder, func(lang string) int64 { return stats[lang].totalSize }),
	}
}

// languageTier derives a tier from accumulated artifact count and size.
func languageTier(count int, totalSize int64) types.SkillTier {
	switch {
	case count >= expertCount && totalSize > expertSize:
		return types.TierExpert
	case count >= advancedCount && totalSize > advancedSize:
		return types.TierAdvanced
	case count >= intermCount && totalSize > intermSize:
		return types.TierIntermediate
	default:
		return types.TierNovice
	}
}

// normalizeTiers clamps confidence to [0,1] and reconciles each tier with its
// confidence. This runs after merging, as a final normalization pass.
func normalizeTiers(list []types.Skill) {
	for i := range list {
		if list[i].Confidence < 0 {
			list[i].Confidence = 0
		}
		if list[i].Confidence > 1 {
			list[i].Confidence = 1
		}

		switch {
		case list[i].Confidence < 0.3:
			list[i].Tier = types.TierNovice
		case list[i].Confidence < 0.6:
			// Mid confidence caps at intermediate.
			if list[i].Tier.Rank() > types.TierIntermediate.Rank() {
				list[i].Tier = types.TierIntermediate
			}
		case list[i].Confidence > 0.9:
			// High confidence floors at advanced.
			if list[i].Tier.Rank() < types.TierAdvanced.Rank() {
				list[i].Tier = types.TierAdvanced
			}
		}
	}
}

// technologyUsage computes each language's share of the total accumulated
// size. All percentages are 0 when the total size is 0.
func technologyUsage(langs []string, sizeOf func(string) int64) []types.TechnologyUsage {
	var total int64
	for _, lang := range langs {
		total += sizeOf(lang)
	}

	out := make([]types.TechnologyUsage, 0, len(langs))
	for _, lang := range langs {
		size := sizeOf(lang)
		pct := 0.0
		if total > 0 {
			pct = float64(size) / float64(total) * 100
		}
		out = append(out, types.TechnologyUsage{
			Name:       lang,
			Percentage: pct,
			SizeMetric: size,
		})
	}
	return out
}
