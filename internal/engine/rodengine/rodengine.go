// Package rodengine renders pages to PDF with headless Chrome via go-rod.
// Rod downloads a managed Chromium on first run when none is configured.
package rodengine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pdf/internal/engine"
	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/process"
)

var _ engine.Renderer = (*Renderer)(nil)

// Renderer implements engine.Renderer using go-rod.
type Renderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// New creates a Renderer. The browser is launched by Start.
func New(timeout time.Duration) *Renderer {
	return &Renderer{timeout: timeout}
}

// Start lazily launches and connects to the browser.
func (r *Renderer) Start() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", engine.ErrBrowserConnect, err)
	}

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		l.Kill()
		return fmt.Errorf("%w: %v", engine.ErrBrowserConnect, err)
	}
	r.launcher = l
	return nil
}

// noSandbox reports whether Chrome must run without its sandbox, which
// CI and container environments require.
func noSandbox() bool {
	return os.Getenv("CI") == "true" ||
		os.Getenv("ROD_NO_SANDBOX") == "1" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// Close releases browser resources.
// Chrome helper processes can outlive the browser, so the whole process
// group is killed once the browser has closed.
func (r *Renderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil

	process.KillProcessGroup(r.launcher.PID())
	r.launcher.Cleanup()
	r.launcher = nil
	return err
}

// Render loads p in a new tab and prints it.
func (r *Renderer) Render(ctx context.Context, p *engine.Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Start(); err != nil {
		return nil, err
	}

	target, cleanup, err := pageURL(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrPageLoad, err)
	}
	defer cleanup()

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", engine.ErrPageLoad, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := r.prepare(page, p); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrPageLoad, err)
	}

	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrPageLoad, err)
	}
	if err := page.Timeout(r.loadTimeout(ctx)).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrPageLoad, err)
	}
	if err := wait(ctx, p.JSDelay); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", engine.ErrPDFGeneration, err)
	}
	return pdf, nil
}

// prepare applies headers, script and media emulation before navigation.
func (r *Renderer) prepare(page *rod.Page, p *engine.Page) error {
	if len(p.Headers) > 0 {
		dict := make([]string, 0, 2*len(p.Headers))
		for _, h := range p.Headers {
			dict = append(dict, h.Name, h.Value)
		}
		if _, err := page.SetExtraHeaders(dict); err != nil {
			return fmt.Errorf("setting headers: %w", err)
		}
	}
	if !p.JavaScript {
		if err := (proto.EmulationSetScriptExecutionDisabled{Value: true}).Call(page); err != nil {
			return fmt.Errorf("disabling javascript: %w", err)
		}
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: mediaType(p)}).Call(page); err != nil {
		return fmt.Errorf("emulating media: %w", err)
	}
	return nil
}

func (r *Renderer) loadTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}
	return r.timeout
}

// pageURL returns the URL to navigate to. Inline HTML is written to a
// temp file so relative file:// assets resolve.
func pageURL(p *engine.Page) (string, func(), error) {
	if p.URL != "" {
		return p.URL, func() {}, nil
	}
	path, cleanup, err := fileutil.WriteTempFile(p.HTML, "html")
	if err != nil {
		return "", nil, err
	}
	return "file://" + path, cleanup, nil
}

func mediaType(p *engine.Page) string {
	if p.PrintMedia {
		return "print"
	}
	return "screen"
}

func wait(ctx context.Context, d time.Duration) error {
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

// buildPDFOptions translates p into print parameters.
func buildPDFOptions(p *engine.Page) *proto.PagePrintToPDF {
	opts := &proto.PagePrintToPDF{
		Landscape:       p.Landscape,
		PrintBackground: p.PrintBackground,
		Scale:           floatPtr(p.Scale),
		PaperWidth:      floatPtr(p.PaperWidth),
		PaperHeight:     floatPtr(p.PaperHeight),
		MarginTop:       floatPtr(p.MarginTop),
		MarginBottom:    floatPtr(p.MarginBottom),
		MarginLeft:      floatPtr(p.MarginLeft),
		MarginRight:     floatPtr(p.MarginRight),
	}
	if p.DisplayHeaderFooter() {
		opts.DisplayHeaderFooter = true
		opts.HeaderTemplate, opts.FooterTemplate = p.Templates()
	}
	return opts
}

func floatPtr(v float64) *float64 {
	return &v
}
