package chat

import "strings"

// DedupeLines drops every line that repeats an earlier line of s, keeping
// first occurrences in their original order.
func DedupeLines(s string) string {
	lines := strings.Split(s, "\n")
	seen := make(map[string]struct{}, len(lines))
	kept := lines[:0]
	for _, line := range lines {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
