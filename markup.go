package html2pdf

import (
	"context"

	"github.com/alnah/go-html2pdf/internal/markup"
)

// Source produces the markup of one content object.
type Source = markup.Source

// Vars are template variables.
type Vars = markup.Vars

// Markup errors.
var (
	ErrMarkdown = markup.ErrMarkdown
	ErrTemplate = markup.ErrTemplate
)

// HTML returns a Source yielding s unchanged.
func HTML(s string) Source {
	return markup.HTML(s)
}

// Markdown returns a Source rendering GitHub-flavored Markdown to an HTML5
// document. Fenced code is highlighted with chroma CSS classes and
// ==text== becomes <mark>. Raw HTML in s is dropped.
func Markdown(s string) Source {
	return markup.Markdown(s)
}

// Template returns a Source rendering a Django-style template
// ({{ name }}, {% for %}, {% if %}) with vars. Values are HTML-escaped
// unless marked |safe.
func Template(text string, vars Vars) Source {
	return markup.Template(text, vars)
}

// TemplateFile is Template reading its text from path. Includes resolve
// relative to the template's directory.
func TemplateFile(path string, vars Vars) Source {
	return markup.TemplateFile(path, vars)
}

// WithStylesheet returns src with css inlined in a <style> block.
func WithStylesheet(src Source, css string) Source {
	return markup.Stylesheet(src, css)
}

// WithStylesheetLink returns src with a <link> to the stylesheet at href.
func WithStylesheetLink(src Source, href string) Source {
	return markup.StylesheetLink(src, href)
}

// WithBaseDir returns src with relative image, link and stylesheet
// references resolved against dir.
func WithBaseDir(src Source, dir string) Source {
	return markup.BaseDir(src, dir)
}

// ObjectFrom renders src and wraps the result in a ContentObject.
func ObjectFrom(ctx context.Context, src Source, settings *ObjectSettings) (*ContentObject, error) {
	content, err := src.Markup(ctx)
	if err != nil {
		return nil, err
	}
	return NewObject(content, settings), nil
}
