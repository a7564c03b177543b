// Package markdown renders chat message text to HTML for the dashboard.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// md is safe for concurrent use once built.
// Raw HTML in the source is omitted by goldmark unless WithUnsafe is set.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		ghtml.WithHardWraps(),
	),
)

// ToHTML converts chat text written in Markdown into HTML that is safe to
// embed in a page. Bot replies are usually Markdown; user inputs are plain
// text and come out as a single paragraph.
func ToHTML(text string) (template.HTML, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimRight(buf.String(), "\n")), nil //nolint:gosec // goldmark escapes text and drops raw HTML
}

// MustHTML is ToHTML for template use. On a conversion failure the text is
// shown escaped inside a paragraph instead.
func MustHTML(text string) template.HTML {
	out, err := ToHTML(text)
	if err != nil {
		return template.HTML("<p>" + html.EscapeString(text) + "</p>") //nolint:gosec // escaped above
	}
	return out
}
