// Package preprocess normalises uploaded plain-text documents before they are
// staged for comparison.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\f\v]*\n\s*`)
	spaceRun       = regexp.MustCompile(`\s+`)
)

// Normalize applies NFC, collapses whitespace inside paragraphs to single
// spaces and keeps one blank line between paragraphs.
func Normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := paragraphBreak.Split(text, -1)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(spaceRun.ReplaceAllString(b, " "))
		if b != "" {
			out = append(out, b)
		}
	}
	return strings.Join(out, "\n\n")
}

// IsJSON reports whether doc is a JSON object or array. Anything else,
// including text that merely opens with a bracket such as "[1] ...", is text.
func IsJSON(doc []byte) bool {
	if !gjson.ValidBytes(doc) {
		return false
	}
	root := gjson.ParseBytes(doc)
	return root.IsObject() || root.IsArray()
}
