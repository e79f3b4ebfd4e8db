package verify

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// classifyDocument matches OCR text against the configured keyword lists.
// The first type whose keyword appears wins; lists are checked in a stable
// order so overlapping keywords resolve deterministically.
func classifyDocument(text string, types map[string][]string, order []string) string {
	lower := strings.ToLower(text)
	for _, name := range order {
		for _, kw := range types[name] {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return name
			}
		}
	}
	return ""
}

// Words that look like names on an ID card but never are.
var nameStopwords = map[string]bool{
	"republic": true, "government": true, "india": true, "card": true,
	"passport": true, "licence": true, "license": true, "driving": true,
	"permanent": true, "account": true, "number": true, "national": true,
	"identity": true, "aadhaar": true, "income": true, "department": true,
	"date": true, "birth": true, "issue": true, "expiry": true, "address": true,
	"male": true, "female": true, "signature": true, "authority": true,
	"union": true, "unique": true, "identification": true, "tax": true,
	"services": true, "transport": true, "valid": true, "till": true,
}

// extractName looks for the first plausible person name in the OCR text:
// a line of two to four capitalized (or all-caps) words with no digits and
// no document boilerplate.
func extractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if !plausibleNameWords(words) {
			continue
		}
		return titleWords(words)
	}
	return ""
}

func plausibleNameWords(words []string) bool {
	for _, w := range words {
		if len(w) < 2 {
			return false
		}
		if nameStopwords[strings.ToLower(w)] {
			return false
		}
		for _, r := range w {
			if unicode.IsDigit(r) {
				return false
			}
		}
		first := rune(w[0])
		if !unicode.IsUpper(first) {
			return false
		}
		// Either Title Case or ALL CAPS; mixed like "JoHn" is OCR junk.
		rest := w[1:]
		if rest != strings.ToLower(rest) && rest != strings.ToUpper(rest) {
			return false
		}
	}
	return true
}

func titleWords(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		lw := strings.ToLower(w)
		out[i] = strings.ToUpper(lw[:1]) + lw[1:]
	}
	return strings.Join(out, " ")
}

// namesMatch compares the extracted name with the name the candidate gave,
// token by token after normalization. Every token of the shorter name must
// appear in the longer one, so "John Smith" matches "John Robert Smith".
func namesMatch(extracted, expected string) bool {
	a := nameTokens(extracted)
	b := nameTokens(expected)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	short, long := a, b
	if len(b) < len(a) {
		short, long = b, a
	}
	set := make(map[string]bool, len(long))
	for _, t := range long {
		set[t] = true
	}
	for _, t := range short {
		if !set[t] {
			return false
		}
	}
	return true
}

func nameTokens(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		f = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

var reDate = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})\b`)

// extractBirthDate finds the first date-looking token and parses it as
// dd/mm/yyyy, the layout Indian identity documents use. Best effort; nil
// when nothing parses.
func extractBirthDate(text string) *time.Time {
	for _, m := range reDate.FindAllStringSubmatch(text, -1) {
		t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+normalizeYear(m[3]))
		if err != nil {
			continue
		}
		if t.Year() < 1900 || t.After(time.Now()) {
			continue
		}
		return &t
	}
	return nil
}

func normalizeYear(y string) string {
	if len(y) == 4 {
		return y
	}
	// Two-digit years on old cards: 00-29 reads as 20xx, else 19xx.
	if y >= "00" && y <= "29" {
		return "20" + y
	}
	return "19" + y
}
