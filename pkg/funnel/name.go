package funnel

import (
	"regexp"
	"strings"
)

// Ordered extraction patterns for the name step: self-introductions first,
// then a bare name.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bmy name is\s+([a-z][a-z .'-]{1,60})`),
	regexp.MustCompile(`(?i)\bi am\s+([a-z][a-z .'-]{1,60})`),
	regexp.MustCompile(`(?i)\bi'?m\s+([a-z][a-z .'-]{1,60})`),
	regexp.MustCompile(`(?i)\bthis is\s+([a-z][a-z .'-]{1,60})`),
	regexp.MustCompile(`(?i)^\s*([a-z][a-z .'-]{1,60})\s*$`),
}

// Phrases that read as a refusal rather than a name.
var nameRefusals = map[string]bool{
	"skip": true, "no": true, "none": true, "na": true, "n/a": true,
	"nothing": true, "why": true, "no thanks": true,
}

// extractName pulls a candidate name out of a free-form reply. Empty when
// nothing name-shaped is found or the reply is an explicit refusal.
func extractName(msg string) string {
	trimmed := strings.ToLower(strings.TrimSpace(msg))
	if nameRefusals[trimmed] {
		return ""
	}
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		name = strings.Trim(name, ".")
		if name == "" {
			continue
		}
		return titleCase(name)
	}
	return ""
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
