package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the width used when descriptions are printed in tables.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest maxLen accepted by TruncateDescription; anything
// below would leave no room for a character plus "...".
const MinTruncateLen = 4

// TruncateDescription collapses whitespace into single spaces and shortens the
// result to maxLen runes, ending with "..." when truncated.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// SplitList splits a comma-separated list, trimming whitespace around each
// element. Blank elements are kept as empty strings so callers can report them.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Dedupe returns items with duplicates removed, preserving first-seen order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
