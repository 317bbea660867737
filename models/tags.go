package models

import "strings"

// NormalizeTag lower-cases and trims a tag and turns inner spaces into hyphens.
func NormalizeTag(tag string) string {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	return strings.Join(strings.Fields(normalized), "-")
}

// NormalizeTags normalizes every tag, dropping blanks and duplicates while
// keeping first-seen order. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
