package content

import (
	"regexp"
	"strings"
	"sync"
)

// Section names a labeled region of the content blob together with the
// synonyms used to locate it in prompts and headings.
type Section struct {
	Name     string
	Synonyms []string
}

// Sections provides the deterministic extraction fallback of the responder
// chain: when every AI provider fails, a labeled section of the content
// blob is located by synonym, cleaned and returned verbatim.
//
// Repeated (section, prompt) pairs are served from an in-process cache.
// The cache is append-only and never invalidated within a process lifetime;
// content changes too infrequently for staleness to matter here.
type Sections struct {
	provider *Provider
	defs     []Section
	cache    sync.Map // "section|prompt" -> string
}

func NewSections(p *Provider, defs []Section) *Sections {
	return &Sections{provider: p, defs: defs}
}

var (
	reHTMLTag   = regexp.MustCompile(`<[^>]+>`)
	reMarkup    = regexp.MustCompile("[*_#`~\\[\\]]+")
	reSpaces    = regexp.MustCompile(`[ \t]+`)
	reBulletPfx = regexp.MustCompile(`^\s*([-•*]|\d+[.)])\s*`)
)

var boilerplate = []string{
	"cookie", "copyright", "all rights reserved", "privacy policy",
	"terms of use", "subscribe", "follow us", "©",
}

// ForPrompt resolves the section whose synonyms appear in the prompt and
// returns its cleaned text. The second result is false when no section
// matches or the section yields no usable text.
func (s *Sections) ForPrompt(prompt string) (string, bool) {
	def, ok := s.match(prompt)
	if !ok {
		return "", false
	}
	key := def.Name + "|" + prompt
	if v, ok := s.cache.Load(key); ok {
		return v.(string), true
	}
	text := s.Extract(def.Name)
	if text == "" {
		return "", false
	}
	s.cache.Store(key, text)
	return text, true
}

func (s *Sections) match(prompt string) (Section, bool) {
	p := strings.ToLower(prompt)
	for _, def := range s.defs {
		for _, syn := range def.Synonyms {
			if strings.Contains(p, syn) {
				return def, true
			}
		}
	}
	return Section{}, false
}

// Extract locates the named section in the current content block and
// returns its cleaned body. Empty when the section cannot be found.
func (s *Sections) Extract(name string) string {
	var def Section
	for _, d := range s.defs {
		if d.Name == name {
			def = d
			break
		}
	}
	if def.Name == "" {
		return ""
	}

	lines := strings.Split(s.provider.Current().Text, "\n")
	start := -1
	for i, line := range lines {
		if isHeading(line) && containsAny(strings.ToLower(line), def.Synonyms) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		// No heading: fall back to the sentences that mention a synonym.
		return cleanText(sentencesMentioning(lines, def.Synonyms))
	}

	var body []string
	for _, line := range lines[start:] {
		if isHeading(line) {
			break
		}
		body = append(body, line)
	}
	return cleanText(body)
}

func isHeading(line string) bool {
	t := strings.TrimSpace(reHTMLTag.ReplaceAllString(line, ""))
	if t == "" || len(t) > 60 {
		return false
	}
	if strings.HasPrefix(t, "#") {
		return true
	}
	if strings.HasSuffix(t, ":") {
		return true
	}
	// Short line without sentence punctuation, e.g. "OUR SERVICES".
	return !strings.ContainsAny(t, ".!?") && len(strings.Fields(t)) <= 6 &&
		t == strings.ToUpper(t) && strings.ToUpper(t) != strings.ToLower(t)
}

func sentencesMentioning(lines []string, synonyms []string) []string {
	var out []string
	for _, line := range lines {
		if containsAny(strings.ToLower(line), synonyms) {
			out = append(out, line)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func cleanText(lines []string) string {
	var out []string
	for _, line := range lines {
		line = reHTMLTag.ReplaceAllString(line, " ")
		line = reBulletPfx.ReplaceAllString(line, "")
		line = reMarkup.ReplaceAllString(line, "")
		line = strings.TrimSpace(reSpaces.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if containsAny(strings.ToLower(line), boilerplate) {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
