package main

import (
	"fmt"
	"io"
	"sync"

	html2pdf "github.com/alnah/go-html2pdf"
)

// progressObserver prints backend phases, warnings and errors for the
// documents it tracks.
type progressObserver struct {
	html2pdf.NopObserver

	mu    sync.Mutex
	w     io.Writer
	names map[*html2pdf.Document]string
}

var _ html2pdf.Observer = (*progressObserver)(nil)

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w, names: make(map[*html2pdf.Document]string)}
}

func (p *progressObserver) track(doc *html2pdf.Document, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[doc] = name
}

func (p *progressObserver) untrack(doc *html2pdf.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.names, doc)
}

// printf writes a line for doc; untracked documents are ignored.
func (p *progressObserver) printf(doc *html2pdf.Document, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.names[doc]
	if !ok {
		return
	}
	fmt.Fprintf(p.w, "%s: "+format+"\n", append([]any{name}, args...)...)
}

func (p *progressObserver) PhaseChanged(e html2pdf.PhaseChangedEvent) {
	p.printf(e.Document, "[%d/%d] %s", e.Current+1, e.Count, e.Description)
}

func (p *progressObserver) Warning(e html2pdf.WarningEvent) {
	p.printf(e.Document, "warning: %s", e.Message)
}

func (p *progressObserver) Error(e html2pdf.ErrorEvent) {
	p.printf(e.Document, "error: %s", e.Message)
}
