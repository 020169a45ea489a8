// Package richtext renders the rich-text full note of a link as plain text.
package richtext

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/starford/taborganizer/internal/models"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|s|strong|em|a|ul|ol|li|h[1-6]|blockquote|pre|code)[\s>/]`)

var (
	imageRe   = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	quoteRe   = regexp.MustCompile(`(?m)^>\s?`)
	bulletRe  = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+`)
	blankRe   = regexp.MustCompile(`\n{3,}`)
)

// ContainsHTML reports whether s appears to contain HTML markup.
func ContainsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// PlainText renders s as the text a reader would see. Input without
// markup is returned trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if !ContainsHTML(s) {
		return strings.TrimSpace(s)
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return stripMarkdown(md)
}

// Preview returns the first n runes of the plain rendering of s.
func Preview(s string, n int) string {
	return models.Truncate(PlainText(s), n)
}

func stripMarkdown(md string) string {
	out := imageRe.ReplaceAllString(md, "$1")
	out = linkRe.ReplaceAllString(out, "$1")
	out = headingRe.ReplaceAllString(out, "")
	out = quoteRe.ReplaceAllString(out, "")
	out = bulletRe.ReplaceAllString(out, "")
	out = stripInline(out)
	out = blankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// escapable lists the characters the converter prefixes with a backslash
// when they appear literally in the text.
const escapable = "\\*_#[]()>~`.+-!|{}"

// stripInline removes emphasis and code markers and unescapes literal
// characters. An escaped marker is text and is kept.
func stripInline(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && strings.IndexByte(escapable, s[i+1]) >= 0:
			b.WriteByte(s[i+1])
			i++
		case c == '*' || c == '_' || c == '`':
		case c == '~' && i+1 < len(s) && s[i+1] == '~':
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
