package engine

import (
	"context"
	"time"
)

// Renderer prints one resolved page to PDF.
//
// Start is called once from Load and must be safe to repeat after a
// failure. Render is never called concurrently.
type Renderer interface {
	Start() error
	Render(ctx context.Context, page *Page) ([]byte, error)
	Close() error
}

// Header is one extra HTTP request header.
type Header struct {
	Name  string
	Value string
}

// Page is everything a renderer needs to print one document.
// Dimensions are in inches.
type Page struct {
	// HTML is the composed document. When URL is set, HTML is empty and the
	// renderer navigates to URL instead.
	HTML string
	URL  string

	Title string

	PaperWidth   float64
	PaperHeight  float64
	Landscape    bool
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	PrintBackground bool
	JavaScript      bool
	PrintMedia      bool    // emulate print media instead of screen
	Scale           float64 // 1 is 100%
	JSDelay         time.Duration

	Headers []Header

	// HeaderTemplate and FooterTemplate use Chrome's print template
	// classes. Both empty means no header or footer.
	HeaderTemplate string
	FooterTemplate string
}

// DisplayHeaderFooter reports whether either template is set.
func (p *Page) DisplayHeaderFooter() bool {
	return p.HeaderTemplate != "" || p.FooterTemplate != ""
}

// HeaderMap returns Headers as a map, later names overriding earlier ones.
func (p *Page) HeaderMap() map[string]string {
	if len(p.Headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(p.Headers))
	for _, h := range p.Headers {
		m[h.Name] = h.Value
	}
	return m
}
