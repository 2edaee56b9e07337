package markup

import (
	"context"
	"html"
	"strings"
)

// Stylesheet wraps src and inlines css as a <style> block.
func Stylesheet(src Source, css string) Source {
	return Func(func(ctx context.Context) (string, error) {
		content, err := src.Markup(ctx)
		if err != nil {
			return "", err
		}
		return InjectStyle(content, css), nil
	})
}

// StylesheetLink wraps src and references the stylesheet at href.
func StylesheetLink(src Source, href string) Source {
	return Func(func(ctx context.Context) (string, error) {
		content, err := src.Markup(ctx)
		if err != nil {
			return "", err
		}
		return InjectLink(content, href), nil
	})
}

// InjectStyle inserts css as a <style> block before </head>, after
// <body> when there is no head, or at the start of the content.
func InjectStyle(content, css string) string {
	if css == "" {
		return content
	}
	return InjectHead(content, StyleTag(css))
}

// InjectLink inserts a screen stylesheet <link> for href the same way
// InjectStyle places its block.
func InjectLink(content, href string) string {
	if href == "" {
		return content
	}
	return InjectHead(content, LinkTag(href))
}

// StyleTag returns css wrapped in a <style> element.
func StyleTag(css string) string {
	return "<style>" + sanitizeCSS(css) + "</style>"
}

// LinkTag returns a screen stylesheet <link> for href.
func LinkTag(href string) string {
	return `<link href="` + html.EscapeString(href) + `" rel="stylesheet" type="text/css" media="screen">`
}

// InjectHead inserts block before </head>, after the <body> tag when
// there is no head, or at the start of content. Tag names match
// ASCII case-insensitively; other bytes are never re-encoded, so content
// in any encoding keeps its offsets.
func InjectHead(content, block string) string {
	if idx := indexFold(content, "</head>"); idx != -1 {
		return content[:idx] + block + content[idx:]
	}
	if idx := indexFold(content, "<body"); idx != -1 {
		if end := strings.IndexByte(content[idx:], '>'); end != -1 {
			at := idx + end + 1
			return content[:at] + block + content[at:]
		}
	}
	return block + content
}

// indexFold returns the byte offset of the first match of the lowercase
// ASCII pattern sub in s, ignoring ASCII case, or -1.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if equalFoldASCII(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(s, lower string) bool {
	for i := 0; i < len(lower); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != lower[i] {
			return false
		}
	}
	return true
}

// sanitizeCSS keeps css from closing the <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
