package grading

import "strings"

// normalizeBlank trims surrounding whitespace and folds case.
func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// blankMatches compares a fill-blank response with the reference answer.
// An empty reference never matches.
func blankMatches(resp, ref string) bool {
	ref = normalizeBlank(ref)
	if ref == "" {
		return false
	}
	return normalizeBlank(resp) == ref
}
