package pdf

import (
	"regexp"
	"strings"
)

// Heuristic limits for locating the abstract and introduction.
const (
	// AbstractFallbackWords is how many words are kept when the abstract has no detectable end.
	AbstractFallbackWords = 500

	// IntroFallbackWords is how many words are kept when the introduction has no detectable end.
	IntroFallbackWords = 1000

	// MinBestTextWords is the minimum size of a usable best text. Anything
	// shorter means the headings were misdetected.
	MinBestTextWords = 100
)

// Headings are matched case-insensitively against the original text so
// that match offsets always index it, whatever runes it contains.
var (
	// abstractPattern also matches "in abstract" so those hits can be skipped.
	abstractPattern    = regexp.MustCompile(`(?i)(in\s)?abstract`)
	abstractEndPattern = regexp.MustCompile(`(?i)introduction|keywords|\n1\.`)
	introPattern       = regexp.MustCompile(`(?i)introduction`)
	introEndPattern    = regexp.MustCompile(`(?i)methods|related work|background|\n2\.`)
	referencesPattern  = regexp.MustCompile(`(?i)\n(?:references|bibliography)`)
)

// CleanFullText cuts the text at the last "References" or "Bibliography"
// heading. Text without either heading is returned unchanged.
func CleanFullText(text string) string {
	matches := referencesPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	return text[:matches[len(matches)-1][0]]
}

// BestText returns the abstract followed by the introduction, or "" when
// fewer than MinBestTextWords words could be located.
func BestText(text string) string {
	var b strings.Builder

	if start := findAbstract(text); start != -1 {
		b.WriteString(section(text[start:], abstractEndPattern, AbstractFallbackWords))
	}

	if loc := introPattern.FindStringIndex(text); loc != nil {
		b.WriteString("\n")
		b.WriteString(section(text[loc[0]:], introEndPattern, IntroFallbackWords))
	}

	best := b.String()
	if len(strings.Fields(best)) < MinBestTextWords {
		return ""
	}
	return best
}

// section returns text up to the first match of end, or its first
// fallbackWords words when end never matches.
func section(text string, end *regexp.Regexp, fallbackWords int) string {
	if loc := end.FindStringIndex(text); loc != nil {
		return text[:loc[0]]
	}
	return firstWords(text, fallbackWords)
}

// findAbstract returns the offset of the first "abstract" that is not part
// of the phrase "in abstract", or -1.
func findAbstract(text string) int {
	for _, m := range abstractPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[2] == -1 {
			return m[0]
		}
	}
	return -1
}

// firstWords joins the first n whitespace-separated words with single spaces.
func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
