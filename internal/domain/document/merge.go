package document

import (
	"sort"
	"strings"
)

// MergeDedupedLines merges two extracted texts into the sorted union of
// their stripped non-empty lines, joined by newlines. Used to combine
// embedded PDF text with OCR output when the same page contributed to both,
// at the cost of original line order.
func MergeDedupedLines(a, b string) string {
	seen := make(map[string]struct{})
	var lines []string
	for _, text := range []string{a, b} {
		for _, line := range splitLines(text) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
