package html2pdf

import (
	"fmt"
	"time"

	"github.com/alnah/go-html2pdf/internal/config"
)

// Profile is a reusable set of conversion settings loaded from YAML:
//
//	engine: chromedp
//	timeout: 45s
//	global:
//	  title: Quarterly Report
//	  paperSize: letter
//	  margins: {top: 15mm, bottom: 15mm}
//	object:
//	  background: true
//	  headers:
//	    - {name: Authorization, value: Bearer xyz}
//	  footer: {center: "[page] / [topage]", line: true}
//
// Global and Object return fresh settings on every call, so a Profile can
// seed any number of documents.
type Profile struct {
	cfg     *config.Config
	timeout time.Duration
}

// LoadProfile reads a profile from a path, or by name from ./<name>.yaml
// or <user config dir>/go-html2pdf/<name>.yaml. Unknown fields and out
// of range values are rejected.
func LoadProfile(nameOrPath string) (*Profile, error) {
	cfg, err := config.LoadConfig(nameOrPath)
	if err != nil {
		return nil, err
	}
	return newProfile(cfg)
}

func newProfile(cfg *config.Config) (*Profile, error) {
	p := &Profile{cfg: cfg}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: timeout: %q is not a positive duration", ErrProfileInvalid, cfg.Timeout)
		}
		p.timeout = d
	}
	return p, nil
}

// Engine returns the configured engine name, or "" for the default.
func (p *Profile) Engine() string {
	return p.cfg.Engine
}

// Timeout returns the configured render timeout, or 0 for the default.
func (p *Profile) Timeout() time.Duration {
	return p.timeout
}

// OutputDir returns the configured output directory, or "".
func (p *Profile) OutputDir() string {
	return p.cfg.Output.DefaultDir
}

// Options returns the converter options the profile sets.
func (p *Profile) Options() []Option {
	var opts []Option
	if p.cfg.Engine != "" {
		opts = append(opts, WithEngine(p.cfg.Engine))
	}
	if p.timeout > 0 {
		opts = append(opts, WithTimeout(p.timeout))
	}
	return opts
}

// Global returns the profile's global settings.
func (p *Profile) Global() *GlobalSettings {
	g := p.cfg.Global
	s := &GlobalSettings{Outline: g.Outline}

	// Enumerations were validated on load.
	if g.Orientation != "" {
		o, _ := ParseOrientation(g.Orientation)
		s.Orientation = &o
	}
	if g.ColorMode != "" {
		m, _ := ParseColorMode(g.ColorMode)
		s.ColorMode = &m
	}
	if g.PaperSize != "" {
		k, _ := ParsePaperKind(g.PaperSize)
		s.Paper = &k
	}
	if g.Title != "" {
		s.DocumentTitle = Ptr(g.Title)
	}
	if g.DPI > 0 {
		s.DPI = Ptr(g.DPI)
	}
	if m := g.Margins; m != (config.MarginsConfig{}) {
		s.Margins = &MarginSettings{
			Top:    optional(m.Top),
			Bottom: optional(m.Bottom),
			Left:   optional(m.Left),
			Right:  optional(m.Right),
		}
	}
	return s
}

// Object returns the profile's content object settings.
func (p *Profile) Object() *ObjectSettings {
	o := p.cfg.Object
	s := &ObjectSettings{}

	web := WebSettings{
		Background:       o.Background,
		LoadImages:       o.Images,
		EnableJavascript: o.JavaScript,
		PrintMediaType:   o.PrintMedia,
		DefaultEncoding:  optional(o.Encoding),
		UserStyleSheet:   optional(o.Stylesheet),
	}
	if web != (WebSettings{}) {
		s.Web = &web
	}

	load := LoadSettings{}
	if o.JSDelay > 0 {
		load.JSDelay = Ptr(o.JSDelay)
	}
	if o.Zoom > 0 {
		load.ZoomFactor = Ptr(o.Zoom)
	}
	for _, h := range o.Headers {
		load.CustomHeaders = load.CustomHeaders.Add(h.Name, h.Value)
	}
	if load.JSDelay != nil || load.ZoomFactor != nil || len(load.CustomHeaders) > 0 {
		s.Load = &load
	}

	if !o.Header.IsZero() {
		s.Header = (*HeaderSettings)(decoration(o.Header))
	}
	if !o.Footer.IsZero() {
		s.Footer = (*FooterSettings)(decoration(o.Footer))
	}
	return s
}

func decoration(c config.DecorationConfig) *Decoration {
	d := &Decoration{
		Left:     optional(c.Left),
		Center:   optional(c.Center),
		Right:    optional(c.Right),
		FontName: optional(c.FontName),
	}
	if c.FontSize > 0 {
		d.FontSize = Ptr(c.FontSize)
	}
	if c.Line {
		d.Line = Ptr(true)
	}
	return d
}

// optional returns nil for an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
