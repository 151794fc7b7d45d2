// Package strings canonicalizes the code lists carried by requests
// (permissions, jurisdictions).
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blank entries, trimming whitespace
// from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, func(s string) string { return s })
}

// DedupeAndTrimLower is DedupeAndTrim with lower-cased elements.
//
//	DedupeAndTrimLower([]string{" Credential:Issue ", "credential:issue"})
//	// Returns: []string{"credential:issue"}
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, strings.ToLower)
}

// DedupeAndTrimUpper is DedupeAndTrim with upper-cased elements, the
// canonical form of ISO country codes.
func DedupeAndTrimUpper(values []string) []string {
	return dedupe(values, strings.ToUpper)
}

// HasBlank reports whether any element is empty after trimming.
func HasBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func dedupe(values []string, canon func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := canon(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
