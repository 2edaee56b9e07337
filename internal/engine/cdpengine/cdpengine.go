// Package cdpengine renders pages to PDF with headless Chromium via chromedp.
package cdpengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/alnah/go-html2pdf/internal/engine"
)

var _ engine.Renderer = (*Renderer)(nil)

// Renderer implements engine.Renderer using a shared Chromium instance.
type Renderer struct {
	browserPath string
	args        []string
	timeout     time.Duration

	initOnce      sync.Once
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithBrowserPath sets the Chromium executable.
func WithBrowserPath(path string) Option {
	return func(r *Renderer) { r.browserPath = path }
}

// WithArgs adds Chromium command line flags such as "--no-sandbox" or
// "--lang=fr".
func WithArgs(args ...string) Option {
	return func(r *Renderer) { r.args = append(r.args, args...) }
}

// WithTimeout bounds one render.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) { r.timeout = d }
}

// New creates a Renderer. The browser is allocated by Start.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start allocates the browser once and starts it.
func (r *Renderer) Start() error {
	r.initOnce.Do(func() {
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if r.browserPath != "" {
			options = append(options, chromedp.ExecPath(r.browserPath))
		}
		if noSandbox() {
			options = append(options, chromedp.NoSandbox)
		}
		options = append(options, allocatorOptionsFromArgs(r.args)...)

		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		r.browserCtx, r.browserCancel = chromedp.NewContext(r.allocCtx)
	})
	if r.allocCtx == nil || r.browserCtx == nil {
		return fmt.Errorf("%w: chromium allocator unavailable", engine.ErrBrowserConnect)
	}
	// Running with no actions launches the browser.
	if err := chromedp.Run(r.browserCtx); err != nil {
		return fmt.Errorf("%w: %v", engine.ErrBrowserConnect, err)
	}
	return nil
}

// Close releases Chromium resources if they have been initialized.
func (r *Renderer) Close() error {
	if r.browserCancel != nil {
		r.browserCancel()
	}
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// Render loads p in a new tab and prints it.
func (r *Renderer) Render(ctx context.Context, p *engine.Page) ([]byte, error) {
	if err := r.Start(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if r.timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, r.timeout)
		defer cancelTimeout()
	}

	var pdf []byte
	load := loadActions(p)
	printPDF := chromedp.ActionFunc(func(ctx context.Context) error {
		if err := sleep(ctx, p.JSDelay); err != nil {
			return err
		}
		var err error
		pdf, _, err = buildPrintToPDFParams(p).Do(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", engine.ErrPDFGeneration, err)
		}
		return nil
	})

	if err := chromedp.Run(execCtx, append(load, printPDF)...); err != nil {
		if errors.Is(err, engine.ErrPDFGeneration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", engine.ErrPageLoad, err)
	}
	return pdf, nil
}

// loadActions prepares the tab and loads the page content.
func loadActions(p *engine.Page) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}
	if h := p.HeaderMap(); len(h) > 0 {
		headers := make(network.Headers, len(h))
		for k, v := range h {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}
	if !p.JavaScript {
		actions = append(actions, emulation.SetScriptExecutionDisabled(true))
	}
	media := "screen"
	if p.PrintMedia {
		media = "print"
	}
	actions = append(actions, emulation.SetEmulatedMedia().WithMedia(media))

	if p.URL != "" {
		return append(actions, chromedp.Navigate(p.URL), chromedp.WaitReady("body", chromedp.ByQuery))
	}
	return append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, p.HTML).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func buildPrintToPDFParams(p *engine.Page) *page.PrintToPDFParams {
	params := page.PrintToPDF().
		WithLandscape(p.Landscape).
		WithPrintBackground(p.PrintBackground).
		WithScale(p.Scale).
		WithPaperWidth(p.PaperWidth).
		WithPaperHeight(p.PaperHeight).
		WithMarginTop(p.MarginTop).
		WithMarginBottom(p.MarginBottom).
		WithMarginLeft(p.MarginLeft).
		WithMarginRight(p.MarginRight)
	if p.DisplayHeaderFooter() {
		header, footer := p.Templates()
		params = params.
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate(header).
			WithFooterTemplate(footer)
	}
	return params
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// noSandbox uses the same environment switches as the rod engine.
func noSandbox() bool {
	return os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1"
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
