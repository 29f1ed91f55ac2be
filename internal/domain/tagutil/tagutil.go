// Package tagutil holds the tag normalization and validation rules shared by
// quest creation and the tag listing surface.
package tagutil

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	MinLength   = 2
	MaxLength   = 30
	MaxPerQuest = 10
)

var spaceRegexp = regexp.MustCompile(`\s+`)
var nameRegexp = regexp.MustCompile(`^[a-z0-9-]+$`)

// Normalize lowercases, trims, replaces inner spaces with hyphens, drops
// empty entries, and dedupes while keeping the first occurrence order. It is
// idempotent.
func Normalize(tags []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, tag := range tags {
		normalized := spaceRegexp.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "-")
		if normalized == "" || seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// Validate normalizes the tags and returns every violated rule. An empty
// slice of violations means the tags are acceptable.
func Validate(tags []string) ([]string, []string) {
	normalized := Normalize(tags)

	violations := []string{}
	if len(normalized) == 0 {
		violations = append(violations, "At least one tag is required")
	}

	if len(normalized) > MaxPerQuest {
		violations = append(violations, fmt.Sprintf("Maximum %d tags allowed per quest", MaxPerQuest))
	}

	for _, tag := range normalized {
		if len(tag) < MinLength {
			violations = append(violations, fmt.Sprintf("Tag %q is too short (minimum %d characters)", tag, MinLength))
		}

		if len(tag) > MaxLength {
			violations = append(violations, fmt.Sprintf("Tag %q is too long (maximum %d characters)", tag, MaxLength))
		}

		if !nameRegexp.MatchString(tag) {
			violations = append(violations, fmt.Sprintf("Tag %q contains invalid characters (only lowercase letters, numbers, and hyphens allowed)", tag))
		}
	}

	return normalized, violations
}

// Popular is the static suggestion list shown before any tag exists.
func Popular() []string {
	return []string{
		"frontend", "backend", "smart-contracts", "zk-proofs", "defi",
		"nft", "dao", "web3", "solidity", "rust",
		"javascript", "typescript", "react", "nextjs", "ethereum",
		"polygon", "arbitrum", "optimism", "testing", "documentation",
	}
}

// Search filters the available tags by a partial match, ranking exact
// matches first, then prefixes, then alphabetically. At most 10 results.
func Search(query string, available []string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []string{}
	}

	matched := []string{}
	for _, tag := range available {
		if strings.Contains(strings.ToLower(tag), q) {
			matched = append(matched, tag)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := strings.ToLower(matched[i]), strings.ToLower(matched[j])
		if (a == q) != (b == q) {
			return a == q
		}

		aPrefix, bPrefix := strings.HasPrefix(a, q), strings.HasPrefix(b, q)
		if aPrefix != bPrefix {
			return aPrefix
		}

		return a < b
	})

	if len(matched) > 10 {
		matched = matched[:10]
	}

	return matched
}

// Suggest proposes popular tags whose words appear in the given title or
// description. At most 5 results.
func Suggest(title, description string) []string {
	text := strings.ToLower(title + " " + description)

	suggestions := []string{}
	for _, tag := range Popular() {
		for _, word := range strings.Split(tag, "-") {
			if strings.Contains(text, word) {
				suggestions = append(suggestions, tag)
				break
			}
		}
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	return suggestions
}
