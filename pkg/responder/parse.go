package responder

import (
	"regexp"
	"strings"
)

var reListPrefix = regexp.MustCompile(`^\s*(\d+[.)]|[-•*])\s*`)

// ParseList extracts the numbered or bulleted items from a model reply,
// dropping surrounding prose. When the reply carries no list markers at all,
// every non-empty line counts as an item. max <= 0 keeps every item.
func ParseList(reply string, max int) []string {
	var items []string
	sawMarker := false
	for _, line := range strings.Split(reply, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if reListPrefix.MatchString(line) {
			if !sawMarker {
				items = items[:0]
				sawMarker = true
			}
		} else if sawMarker {
			continue
		}
		item := strings.TrimSpace(reListPrefix.ReplaceAllString(trimmed, ""))
		if item == "" {
			continue
		}
		items = append(items, item)
		if max > 0 && len(items) == max {
			break
		}
	}
	return items
}
