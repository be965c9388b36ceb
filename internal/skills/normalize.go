// Package skills provides skill-name normalization and confidence-weighted
// skill merging. All skill matching in the system happens on the canonical
// names this package produces, never on raw text.
package skills

import "strings"

// aliases maps common variants to canonical skill names
var aliases = map[string]string{
	"js":         "javascript",
	"ts":         "typescript",
	"py":         "python",
	"golang":     "go",
	"rb":         "ruby",
	"reactjs":    "react",
	"react.js":   "react",
	"vuejs":      "vue",
	"vue.js":     "vue",
	"angularjs":  "angular",
	"nodejs":     "node.js",
	"node":       "node.js",
	"cpp":        "c++",
	"csharp":     "c#",
	"cs":         "c#",
	"postgres":   "postgresql",
	"psql":       "postgresql",
	"mongo":      "mongodb",
	"k8s":        "kubernetes",
	"tf":         "terraform",
	"gh-actions": "github-actions",
	"dotnet":     "c#",
	".net":       "c#",
	"objective":  "objective-c",
	"objc":       "objective-c",
	"sklearn":    "scikit-learn",
	"np":         "numpy",
	"pd":         "pandas",
	"es6":        "javascript",
	"html5":      "html",
	"css3":       "css",
	"scss":       "sass",
	"tailwindcss": "tailwind",
	"next":       "next.js",
	"nextjs":     "next.js",
	"nuxt":       "nuxt.js",
	"nuxtjs":     "nuxt.js",
	"expressjs":  "express",
	"rails":      "ruby-on-rails",
	"ror":        "ruby-on-rails",
}

// Normalize canonicalizes a free-text technology name. It lower-cases the
// input, strips characters outside [a-z0-9+\-.], and applies the alias table.
// Returns the empty string for input that normalizes to nothing; callers must
// skip such results rather than store empty skills.
func Normalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}

	if canonical, ok := aliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}
