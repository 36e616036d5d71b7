package extract

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	controlChars  = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

	typography = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"—", "-", "–", "-",
		"…", "...",
	)
)

// Normalize collapses whitespace runs to single spaces, replaces typographic
// quotes, dashes and ellipses with ASCII, and drops control characters.
func Normalize(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = typography.Replace(text)
	text = controlChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
