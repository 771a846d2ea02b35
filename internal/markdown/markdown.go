// Package markdown strips markdown syntax from LLM replies. The assistant is
// prompted to answer in plain text, but formatting still slips through; Strip
// is the backstop that keeps the frontend free of stray asterisks and hashes.
package markdown

import (
	"regexp"
	"strings"
)

// Substitution order matters: bold runs before italic so that **text**
// doesn't leave a stray pair of single asterisks behind.
var (
	reBold       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.*?)\*`)
	reUnderscore = regexp.MustCompile(`_(.*?)_`)
	reHeading    = regexp.MustCompile(`(?m)^#+[ \t]*(.*)$`)
	reInlineCode = regexp.MustCompile("`(.*?)`")
	reLink       = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	reDashRule   = regexp.MustCompile(`(?m)^---+[ \t]*$`)
	reUnderRule  = regexp.MustCompile(`(?m)^___+[ \t]*$`)
	reBlockquote = regexp.MustCompile(`(?m)^>[ \t]*`)
	reBlankRuns  = regexp.MustCompile(`\n[ \t]*\n([ \t]*\n)+`)
)

// Strip removes markdown formatting, keeping the visible text. Link text is
// kept, the URL discarded. Runs of three or more line breaks collapse to one
// blank line, and the result is trimmed. Strip is pure and idempotent.
func Strip(text string) string {
	if text == "" {
		return text
	}

	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reUnderscore.ReplaceAllString(text, "$1")
	text = reHeading.ReplaceAllString(text, "$1")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	text = reDashRule.ReplaceAllString(text, "")
	text = reUnderRule.ReplaceAllString(text, "")
	text = reBlockquote.ReplaceAllString(text, "")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
