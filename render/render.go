// Package render converts bot replies to HTML and user input to plain text.
package render

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	strip "github.com/grokify/html-strip-tags-go"
)

// MaxInputRunes caps the length of a sanitized user message
const MaxInputRunes = 500

// MarkdownToHTML converts markdown text to HTML. Single newlines become line
// breaks so that menus keep one option per line.
func MarkdownToHTML(markdownText string) string {
	extensions := mdparser.CommonExtensions | mdparser.NoEmptyLineBeforeBlock | mdparser.HardLineBreak
	parser := mdparser.NewWithExtensions(extensions)

	parsedMd := parser.Parse([]byte(markdownText))

	opts := mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML}
	renderer := mdhtml.NewRenderer(opts)

	return string(markdown.Render(parsedMd, renderer))
}

// StripFormatting turns HTML into readable plain text.
func StripFormatting(s string) string {
	// block level tags start a new line
	for _, tag := range []string{"<p>", "</p>", "<h1>", "</h1>", "<h2>", "</h2>", "<h3>", "</h3>", "</ul>", "</ol>"} {
		s = strings.ReplaceAll(s, tag, "\n")
	}
	s = strings.ReplaceAll(s, "<li>", "\n - ")
	s = strings.ReplaceAll(s, "</td>", " ")
	s = strings.ReplaceAll(s, "</tr>", "\n")
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		s = strings.ReplaceAll(s, br, "\n")
	}
	return strip.StripTags(html.UnescapeString(s))
}

// SanitizeInput reduces a user message to trimmed plain text of bounded length.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(strip.StripTags(html.UnescapeString(s)))
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > MaxInputRunes {
		s = string([]rune(s)[:MaxInputRunes])
	}
	return s
}
