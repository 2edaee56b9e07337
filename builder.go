package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/markup"
)

// Builder is a fluent front end for single-page documents.
//
//	pdf, err := html2pdf.NewBuilder(conv).
//		Settings(func(g *html2pdf.GlobalSettings) {
//			g.Orientation = html2pdf.Ptr(html2pdf.Landscape)
//		}).
//		Build(ctx, page, nil)
//
// Until Settings is called, documents use color, portrait A4. Until Build
// receives a configure func, objects use UTF-8 as default encoding. Both
// choices persist across builds. A Builder is not safe for concurrent use;
// the Converter behind it is.
type Builder struct {
	conv   *Converter
	global *GlobalSettings
	object *ObjectSettings

	stylesheet string // link or style block, inserted before </head>
}

// NewBuilder creates a Builder submitting to conv.
func NewBuilder(conv *Converter) *Builder {
	return &Builder{conv: conv}
}

// Settings replaces the global settings with a blank set configured by fn.
// No defaults are kept.
func (b *Builder) Settings(fn func(*GlobalSettings)) *Builder {
	b.global = &GlobalSettings{}
	if fn != nil {
		fn(b.global)
	}
	return b
}

// InjectCSS links the stylesheet at path from every built page, replacing
// any stylesheet injected before. The file must exist; it is referenced
// through a file:/// URL.
func (b *Builder) InjectCSS(path string) error {
	if !fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrStylesheetNotFound, path)
	}
	href, err := fileutil.FileURL(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStylesheetNotFound, err)
	}
	b.stylesheet = markup.LinkTag(href)
	return nil
}

// EmbedCSS inlines the stylesheet at path into every built page,
// replacing any stylesheet injected before.
func (b *Builder) EmbedCSS(path string) error {
	css, err := os.ReadFile(path) // #nosec G304 -- stylesheet path is caller-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrStylesheetNotFound, path)
		}
		return fmt.Errorf("reading stylesheet: %w", err)
	}
	b.stylesheet = markup.StyleTag(string(css))
	return nil
}

// BuildHTML renders src and applies the injected stylesheet.
func (b *Builder) BuildHTML(ctx context.Context, src Source) (string, error) {
	content, err := src.Markup(ctx)
	if err != nil {
		return "", err
	}
	return b.inject(content), nil
}

// Build converts html into a PDF. A non-nil configure replaces the object
// settings with a blank set it configures; nil reuses the previous ones.
func (b *Builder) Build(ctx context.Context, html string, configure func(*ObjectSettings)) ([]byte, error) {
	return b.BuildSource(ctx, HTML(html), configure)
}

// BuildSource is Build for any Source.
func (b *Builder) BuildSource(ctx context.Context, src Source, configure func(*ObjectSettings)) ([]byte, error) {
	if configure != nil {
		b.object = &ObjectSettings{}
		configure(b.object)
	}
	content, err := b.BuildHTML(ctx, src)
	if err != nil {
		return nil, err
	}
	doc := NewDocument(b.globalSettings(), NewObject(content, b.objectSettings()))
	return b.conv.Convert(ctx, doc)
}

func (b *Builder) inject(content string) string {
	if b.stylesheet == "" {
		return content
	}
	return markup.InjectHead(content, b.stylesheet)
}

func (b *Builder) globalSettings() *GlobalSettings {
	if b.global == nil {
		b.global = &GlobalSettings{
			ColorMode:   Ptr(Color),
			Orientation: Ptr(Portrait),
			Paper:       Ptr(A4),
		}
	}
	return b.global
}

func (b *Builder) objectSettings() *ObjectSettings {
	if b.object == nil {
		b.object = &ObjectSettings{
			Web: &WebSettings{DefaultEncoding: Ptr("utf-8")},
		}
	}
	return b.object
}
