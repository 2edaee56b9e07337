// Package markup produces the HTML content handed to a converter.
//
// A Source yields one page of markup. Sources compose: Markdown and
// Template render their input to HTML, while Stylesheet, StylesheetLink
// and BaseDir wrap another Source and rewrite what it produces:
//
//	src := markup.BaseDir(
//		markup.Stylesheet(markup.Markdown(readme), css),
//		"docs/",
//	)
//	html, err := src.Markup(ctx)
//
// Everything here is pure string processing; rendering to PDF is the
// job of the converter in the root package.
package markup
