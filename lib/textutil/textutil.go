package textutil

import (
	"regexp"
	"strings"
)

var (
	iconSpanRegex    = regexp.MustCompile(`<span class="material-symbols-rounded">.*?</span>`)
	tagRegex         = regexp.MustCompile(`<[^>]+>`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	punctuationRegex = regexp.MustCompile(`\s+([.,!?;:])`)
)

// CleanFragment renders an HTML fragment down to its human readable text:
// icon glyph spans are discarded entirely, the remaining tags are stripped,
// runs of whitespace collapse to a single space and stray spaces before
// punctuation are removed.
func CleanFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := iconSpanRegex.ReplaceAllString(fragment, "")
	text = tagRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = punctuationRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}
