package detection

import (
	"slices"
	"strings"
)

// ParseFoodItems turns the model's plain-text answer into a sorted list of
// distinct, trimmed, non-empty lines. The result is never nil.
func ParseFoodItems(text string) []string {
	seen := make(map[string]struct{})
	items := make([]string, 0)

	for _, line := range strings.Split(text, "\n") {
		item := strings.TrimSpace(line)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}

	// Byte-wise order: case-sensitive, "Zucchini" sorts before "apple".
	slices.Sort(items)
	return items
}
