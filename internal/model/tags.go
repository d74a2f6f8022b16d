package model

import "strings"

// NormalizeTags trims tags and drops empties and duplicates.
// The first occurrence wins, so display order stays stable.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

// ParseTags splits a comma separated tag list ("go, rust, docs").
func ParseTags(input string) []string {
	return NormalizeTags(strings.Split(input, ","))
}

// TagsEqual compares two tag lists with set semantics.
func TagsEqual(a, b []string) bool {
	a, b = NormalizeTags(a), NormalizeTags(b)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	for _, t := range b {
		if !set[t] {
			return false
		}
	}
	return true
}
