// Package strings holds small string helpers shared by configuration parsing.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated setting such as a broker list into its
// trimmed, non-empty, distinct elements in first-seen order. An empty input
// yields nil.
func SplitList(v string) []string {
	return DedupeAndTrim(strings.Split(v, ","))
}

// DedupeAndTrim trims each element and drops blanks and repeats. Order is
// preserved.
func DedupeAndTrim(values []string) []string {
	var result []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
