package skills

import "strings"

// vocabulary is the fixed technology vocabulary keyword scans run against.
// Entries are already canonical; aliases are handled by Normalize at merge time.
var vocabulary = []string{
	// Languages
	"javascript", "typescript", "python", "go", "java", "kotlin", "swift",
	"ruby", "php", "c", "c++", "c#", "rust", "scala", "elixir", "erlang",
	"haskell", "clojure", "dart", "lua", "perl", "r", "julia", "objective-c",
	"shell", "bash", "powershell", "sql", "html", "css",

	// Frontend frameworks and tooling
	"react", "vue", "angular", "svelte", "next.js", "nuxt.js", "ember",
	"jquery", "redux", "webpack", "vite", "babel", "sass", "tailwind",
	"bootstrap", "storybook",

	// Backend frameworks
	"node.js", "express", "django", "flask", "fastapi", "spring", "rails",
	"ruby-on-rails", "laravel", "symfony", "gin", "fiber", "phoenix",
	"graphql", "grpc", "rest",

	// Data stores and messaging
	"postgresql", "mysql", "sqlite", "mongodb", "redis", "elasticsearch",
	"cassandra", "dynamodb", "kafka", "rabbitmq", "memcached",

	// Infra, cloud and tooling
	"docker", "kubernetes", "terraform", "ansible", "aws", "azure", "gcp",
	"heroku", "nginx", "linux", "git", "github-actions", "jenkins", "ci",

	// Testing
	"jest", "mocha", "cypress", "selenium", "pytest", "junit",

	// Data science and ML
	"tensorflow", "pytorch", "scikit-learn", "numpy", "pandas", "jupyter",
	"opencv", "spark", "hadoop",
}

// ScanText returns the vocabulary entries present in the given free text.
// Matching is case-insensitive on whole tokens, so short names like "c", "r"
// and "go" cannot fire on arbitrary substrings. Results keep vocabulary order
// so scans are deterministic.
func ScanText(text string) []string {
	if text == "" {
		return nil
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var found []string
	for _, tech := range vocabulary {
		if tokens[tech] {
			found = append(found, tech)
		}
	}
	return found
}

// tokenize splits lowercased text into a token set, keeping the characters
// that appear in vocabulary entries (letters, digits, '+', '#', '.', '-').
func tokenize(text string) map[string]bool {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return false
		case r == '+' || r == '#' || r == '.' || r == '-':
			return false
		}
		return true
	})

	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".-")
		if f != "" {
			tokens[f] = true
		}
	}
	return tokens
}
