package docgen

import (
	"regexp"
	"strings"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// FormatPoem normalizes whitespace in free-form poem text for document
// rendering. Runs of spaces and tabs collapse to a single space, three or
// more consecutive newlines collapse to a blank line (so stanza breaks
// survive), and surrounding whitespace is trimmed.
func FormatPoem(poem string) string {
	out := spaceRuns.ReplaceAllString(poem, " ")
	out = newlineRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
