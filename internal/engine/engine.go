// Package engine implements the conversion backend on top of a headless
// browser Renderer.
//
// It speaks the flat configuration protocol of wkhtmltopdf: settings
// arrive as string key/value pairs on config handles, objects are added
// to a converter and RunConversion composes them into one HTML document
// printed by the renderer. Known wkhtmltopdf keys without a browser
// equivalent are accepted silently; unknown keys raise one warning each.
//
// An Engine is not safe for concurrent use. It expects to be driven from
// a single goroutine, which is what the conversion executor provides.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/backend"
)

// Sentinel errors.
var (
	ErrNotLoaded     = errors.New("engine not loaded")
	ErrUnknownHandle = errors.New("unknown handle")
	ErrInvalidValue  = errors.New("invalid setting value")
	ErrListIndex     = errors.New("list index out of range")
	ErrNoResult      = errors.New("no conversion result")
	ErrNoObjects     = errors.New("converter has no objects")

	// Renderer errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Phase descriptions, in order.
var phases = []string{"Loading pages", "Printing pages", "Done"}

const defaultTimeout = 30 * time.Second

// Engine is a backend.Backend printing through a Renderer.
type Engine struct {
	renderer Renderer
	timeout  time.Duration
	logger   *slog.Logger

	loaded     bool
	next       backend.Handle
	configs    map[backend.Handle]*config
	converters map[backend.Handle]*converter
}

type object struct {
	cfg     *config
	content string
}

type converter struct {
	global   *config
	objects  []object
	cb       backend.Callbacks
	warnings []string
	result   []byte
	err      error
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds one render. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger for render records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine printing through r.
func New(r Renderer, opts ...Option) *Engine {
	e := &Engine{
		renderer:   r,
		timeout:    defaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		configs:    make(map[backend.Handle]*config),
		converters: make(map[backend.Handle]*converter),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load starts the renderer.
func (e *Engine) Load() error {
	if e.loaded {
		return nil
	}
	if err := e.renderer.Start(); err != nil {
		return err
	}
	e.loaded = true
	return nil
}

func (e *Engine) CreateGlobalConfig() (backend.Handle, error) {
	return e.createConfig(true)
}

func (e *Engine) CreateObjectConfig() (backend.Handle, error) {
	return e.createConfig(false)
}

func (e *Engine) createConfig(global bool) (backend.Handle, error) {
	if !e.loaded {
		return 0, ErrNotLoaded
	}
	h := e.handle()
	e.configs[h] = newConfig(global)
	return h, nil
}

func (e *Engine) handle() backend.Handle {
	e.next++
	return e.next
}

func (e *Engine) config(h backend.Handle, global bool) (*config, error) {
	c, ok := e.configs[h]
	if !ok || c.global != global {
		kind := "object"
		if global {
			kind = "global"
		}
		return nil, fmt.Errorf("%w: %s config %d", ErrUnknownHandle, kind, h)
	}
	return c, nil
}

func (e *Engine) SetConfigValue(h backend.Handle, key, value string, global bool) error {
	c, err := e.config(h, global)
	if err != nil {
		return err
	}
	return c.set(key, value)
}

func (e *Engine) CreateConverter(global backend.Handle) (backend.Handle, error) {
	c, err := e.config(global, true)
	if err != nil {
		return 0, err
	}
	delete(e.configs, global)

	h := e.handle()
	e.converters[h] = &converter{global: c, warnings: unknownWarnings(c, "global")}
	return h, nil
}

func (e *Engine) AddObject(conv, obj backend.Handle, content string) error {
	cv, err := e.converter(conv)
	if err != nil {
		return err
	}
	c, err := e.config(obj, false)
	if err != nil {
		return err
	}
	delete(e.configs, obj)

	cv.objects = append(cv.objects, object{cfg: c, content: content})
	cv.warnings = append(cv.warnings, unknownWarnings(c, fmt.Sprintf("object %d", len(cv.objects)))...)
	return nil
}

func unknownWarnings(c *config, scope string) []string {
	out := make([]string, 0, len(c.unknown))
	for _, k := range c.unknown {
		out = append(out, fmt.Sprintf("%s: unknown setting %q ignored", scope, k))
	}
	return out
}

func (e *Engine) converter(h backend.Handle) (*converter, error) {
	cv, ok := e.converters[h]
	if !ok {
		return nil, fmt.Errorf("%w: converter %d", ErrUnknownHandle, h)
	}
	return cv, nil
}

func (e *Engine) RegisterCallbacks(conv backend.Handle, cb backend.Callbacks) error {
	cv, err := e.converter(conv)
	if err != nil {
		return err
	}
	cv.cb = cb
	return nil
}

// RunConversion composes and prints the converter's objects. Callbacks
// fire synchronously: one phase change per phase, one progress string per
// object, every warning, then Finished. A failure is also reported
// through the Error callback and ConversionErr.
func (e *Engine) RunConversion(conv backend.Handle) bool {
	cv, err := e.converter(conv)
	if err != nil {
		return false
	}
	cv.result, cv.err = nil, nil

	cv.phase(0)
	for _, w := range cv.warnings {
		cv.warn(w)
	}

	page, err := e.buildPage(cv)
	if err != nil {
		return cv.fail(err)
	}

	cv.phase(1)
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	began := time.Now()
	pdf, err := e.renderer.Render(ctx, page)
	if err != nil {
		return cv.fail(err)
	}
	e.logger.Debug("page rendered",
		"objects", len(cv.objects),
		"bytes", len(pdf),
		"duration", time.Since(began))

	if out := cv.global.text("out", ""); out != "" && out != "-" {
		if err := os.WriteFile(out, pdf, 0o644); err != nil { // #nosec G306 -- output is a public document
			return cv.fail(fmt.Errorf("writing %s: %w", out, err))
		}
	}

	cv.result = pdf
	cv.phase(2)
	if cv.cb.Finished != nil {
		cv.cb.Finished(true)
	}
	return true
}

func (cv *converter) phase(i int) {
	if cv.cb.PhaseChanged != nil {
		cv.cb.PhaseChanged(backend.Phase{Current: i, Count: len(phases), Description: phases[i]})
	}
}

func (cv *converter) warn(msg string) {
	if cv.cb.Warning != nil {
		cv.cb.Warning(msg)
	}
}

func (cv *converter) progress(msg string) {
	if cv.cb.ProgressChanged != nil {
		cv.cb.ProgressChanged(msg)
	}
}

func (cv *converter) fail(err error) bool {
	cv.err = err
	if cv.cb.Error != nil {
		cv.cb.Error(err.Error())
	}
	if cv.cb.Finished != nil {
		cv.cb.Finished(false)
	}
	return false
}

// buildPage resolves the flat settings into a Page.
func (e *Engine) buildPage(cv *converter) (*Page, error) {
	if len(cv.objects) == 0 {
		return nil, ErrNoObjects
	}
	g := cv.global
	first := cv.objects[0].cfg

	p := &Page{
		Landscape:       strings.EqualFold(g.text("orientation", ""), "landscape"),
		MarginTop:       g.length("margin.top", 0.4),
		MarginBottom:    g.length("margin.bottom", 0.4),
		MarginLeft:      g.length("margin.left", 0.4),
		MarginRight:     g.length("margin.right", 0.4),
		PrintBackground: first.flag("web.background", true),
		JavaScript:      first.flag("web.enableJavascript", true),
		PrintMedia:      first.flag("web.printMediaType", false),
		Scale:           first.number("load.zoomFactor", 1),
		JSDelay:         time.Duration(first.integer("load.jsdelay", 0)) * time.Millisecond,
	}
	if p.Scale < 0.1 || p.Scale > 2 {
		return nil, fmt.Errorf("%w: load.zoomFactor %v (must be between 0.1 and 2)", ErrInvalidValue, p.Scale)
	}

	size, err := paperSize(g.text("size.paperSize", "A4"))
	if err != nil {
		return nil, fmt.Errorf("%w: size.paperSize: %v", ErrInvalidValue, err)
	}
	p.PaperWidth = g.length("size.width", size[0])
	p.PaperHeight = g.length("size.height", size[1])

	parts := make([]part, 0, len(cv.objects))
	for i, o := range cv.objects {
		cv.progress(fmt.Sprintf("Object %d of %d", i+1, len(cv.objects)))
		p.Headers = append(p.Headers, o.cfg.pairs("load.customHeaders")...)
		if p.HeaderTemplate == "" {
			p.HeaderTemplate = decorationTemplate(o.cfg, "header")
		}
		if p.FooterTemplate == "" {
			p.FooterTemplate = decorationTemplate(o.cfg, "footer")
		}
		parts = append(parts, part{content: o.content, cfg: o.cfg})
	}

	if url := first.text("page", ""); url != "" && strings.TrimSpace(cv.objects[0].content) == "" {
		if len(cv.objects) > 1 {
			return nil, fmt.Errorf("%w: page %q: a page URL cannot be combined with other objects", ErrInvalidValue, url)
		}
		p.URL = url
		p.Title = g.text("documentTitle", "")
		return p, nil
	}

	doc, title, err := compose(parts, composeOptions{
		title:     g.text("documentTitle", ""),
		grayscale: strings.EqualFold(g.text("colorMode", ""), "grayscale"),
	})
	if err != nil {
		return nil, fmt.Errorf("composing document: %w", err)
	}
	p.HTML, p.Title = doc, title
	return p, nil
}

func (e *Engine) FetchResult(conv backend.Handle) ([]byte, error) {
	cv, err := e.converter(conv)
	if err != nil {
		return nil, err
	}
	if cv.result == nil {
		return nil, ErrNoResult
	}
	return cv.result, nil
}

// ConversionErr returns the typed cause of the last failed run.
func (e *Engine) ConversionErr(conv backend.Handle) error {
	cv, err := e.converter(conv)
	if err != nil {
		return err
	}
	return cv.err
}

func (e *Engine) DestroyConverter(conv backend.Handle) error {
	if _, err := e.converter(conv); err != nil {
		return err
	}
	delete(e.converters, conv)
	return nil
}

// DestroyConfig releases a config never handed to a converter.
func (e *Engine) DestroyConfig(h backend.Handle) error {
	if _, ok := e.configs[h]; !ok {
		return fmt.Errorf("%w: config %d", ErrUnknownHandle, h)
	}
	delete(e.configs, h)
	return nil
}

// Close releases the renderer. Live handles are dropped.
func (e *Engine) Close() error {
	clear(e.configs)
	clear(e.converters)
	e.loaded = false
	return e.renderer.Close()
}
