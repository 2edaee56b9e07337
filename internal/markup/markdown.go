package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdown indicates Markdown rendering failed.
var ErrMarkdown = errors.New("markdown rendering failed")

// Highlight placeholders live in the Unicode Private Use Area so they
// pass through goldmark untouched and become <mark> afterwards.
const (
	markStart = "\uE000"
	markEnd   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
	firstHeading       = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)
)

// shell wraps the rendered fragment in an HTML5 document.
const shell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
%s</head>
<body>
%s</body>
</html>`

// goldmark.Markdown is safe for concurrent use once built.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
		gmhtml.WithXHTML(),
	),
)

// Markdown is CommonMark text with GitHub extensions, footnotes,
// ==highlight== marks and fenced code highlighting (chroma CSS classes).
// Raw HTML in the input is not rendered.
type Markdown string

// Markup renders m as a standalone HTML5 document. The first level one
// heading, if any, becomes the document title.
func (m Markdown) Markup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	// goldmark has no context support; abandon the render on cancel.
	go func() {
		text := preprocess(string(m))
		var buf bytes.Buffer
		if err := md.Convert([]byte(text), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrMarkdown, err)}
			return
		}
		body := strings.NewReplacer(markStart, "<mark>", markEnd, "</mark>").Replace(buf.String())
		done <- result{html: fmt.Sprintf(shell, titleElement(text), body)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// preprocess normalizes line endings, turns ==text== into placeholders
// and squeezes runs of blank lines.
func preprocess(text string) string {
	text = crlfOrCR.ReplaceAllString(text, "\n")
	text = highlightPattern.ReplaceAllString(text, markStart+"$1"+markEnd)
	return multipleBlankLines.ReplaceAllString(text, "\n\n")
}

func titleElement(text string) string {
	m := firstHeading.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := strings.NewReplacer(markStart, "", markEnd, "").Replace(m[1])
	return "<title>" + html.EscapeString(title) + "</title>\n"
}
