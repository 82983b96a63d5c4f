package journal

import (
	"regexp"
	"strings"
)

const (
	defaultTitle   = "Journal Entry"
	titleWordLimit = 8
	titleMaxLen    = 50
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	codeFencePattern = regexp.MustCompile("```[\\s\\S]*?```")
	markdownInline   = []struct {
		pattern *regexp.Regexp
		replace string
	}{
		{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
		{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
		{regexp.MustCompile(`__([^_]+)__`), "$1"},
		{regexp.MustCompile(`_([^_]+)_`), "$1"},
		{regexp.MustCompile(`~~([^~]+)~~`), "$1"},
		{regexp.MustCompile("`([^`]+)`"), "$1"},
		{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	}
	markdownLinePrefix = regexp.MustCompile(`(?m)^\s*(#{1,6}\s+|[-*+]\s+|\d+\.\s+|>\s+)`)
)

// WordCount counts whitespace separated words after replacing markup tags
// with spaces. Blank content has zero words.
func WordCount(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	return len(strings.Fields(htmlTagPattern.ReplaceAllString(content, " ")))
}

// GenerateTitle derives a short title from the first words of the content
// with markup removed.
func GenerateTitle(content string) string {
	clean := htmlTagPattern.ReplaceAllString(content, "")
	clean = codeFencePattern.ReplaceAllString(clean, "")
	clean = markdownLinePrefix.ReplaceAllString(clean, "")
	for _, rule := range markdownInline {
		clean = rule.pattern.ReplaceAllString(clean, rule.replace)
	}

	words := strings.Fields(clean)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	title := strings.Join(words, " ")
	if title == "" {
		return defaultTitle
	}

	runes := []rune(title)
	if len(runes) > titleMaxLen {
		title = string(runes[:titleMaxLen-3]) + "..."
	}
	return title
}
