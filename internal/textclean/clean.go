// Package textclean normalizes raw extracted or OCR-recognized text.
package textclean

import (
	"regexp"
	"strings"
)

var (
	crlfRE        = regexp.MustCompile(`\r\n`)
	spacesRE      = regexp.MustCompile(`[ \t]+`)
	hyphenRE      = regexp.MustCompile(`-\n([a-zA-Z])`)
	blankLinesRE  = regexp.MustCompile(`\n{2,}`)
	periodUpperRE = regexp.MustCompile(`\.([A-Z])`)
	gluedWordRE   = regexp.MustCompile(`([a-z])([A-Z])`)
)

// Clean normalizes whitespace, joins words hyphenated across line
// breaks and collapses runs of blank lines. The empty string maps to
// itself.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	txt := crlfRE.ReplaceAllString(text, "\n")
	txt = spacesRE.ReplaceAllString(txt, " ")
	txt = hyphenRE.ReplaceAllString(txt, "$1")
	txt = blankLinesRE.ReplaceAllString(txt, "\n\n")
	return strings.TrimSpace(txt)
}

// CleanForDisplay applies Clean plus fixes for snippets shown to users:
// a space after a period glued to an uppercase letter, a space between
// merged lowercase/uppercase word boundaries, and single-space runs.
func CleanForDisplay(text string) string {
	cleaned := Clean(text)
	cleaned = periodUpperRE.ReplaceAllString(cleaned, ". $1")
	cleaned = gluedWordRE.ReplaceAllString(cleaned, "$1 $2")
	return strings.Join(strings.Fields(cleaned), " ")
}
