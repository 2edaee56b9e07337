// Package html2pdf converts HTML documents to PDF through a conversion
// backend that must only ever be driven from one thread.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := html2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	doc := html2pdf.NewDocument(
//	    &html2pdf.GlobalSettings{Paper: html2pdf.Ptr(html2pdf.A4)},
//	    html2pdf.NewObject("<h1>Hello</h1>", nil),
//	)
//	pdf, err := conv.Convert(ctx, doc)
//
// # Threading Model
//
// Convert may be called from any number of goroutines. Every conversion is
// queued and run, one at a time and in submission order, on a single worker
// goroutine locked to its OS thread. That thread is the only one that ever
// touches the backend, which makes backends with thread affinity safe to
// use from concurrent code. Each caller receives only its own result.
//
// A conversion whose context ends while it is still queued never runs.
// Once started it runs to completion; Shutdown drains the queue and then
// releases the backend.
//
// # Settings
//
// GlobalSettings and ObjectSettings are trees of optional fields. Only
// non-nil fields reach the backend, as flat key/value pairs such as
// "size.paperSize"="A4" or "web.enableJavascript"="false". Header maps
// are sent as indexed list entries ("load.customHeaders[0]").
//
// # Events
//
// Observers receive phase, progress, warning, error and finished events
// for every conversion, each tagged with the Document being converted:
//
//	conv.OnPhaseChanged(func(e html2pdf.PhaseChangedEvent) {
//	    log.Printf("%s: %s", e.JobID, e.Description)
//	})
//
// Observers run on the worker thread and must not call Shutdown or Close.
//
// # Markup Sources
//
// Content can come from HTML, Markdown or Django-style templates, and
// stylesheets can be inlined or linked:
//
//	src := html2pdf.WithStylesheet(html2pdf.Markdown(readme), css)
//	obj, err := html2pdf.ObjectFrom(ctx, src, nil)
//
// Builder wraps this into a fluent API for single-page documents, and
// LoadProfile reads reusable settings from YAML.
//
// # Engines
//
// Without WithBackend the converter drives headless Chrome, through
// go-rod (EngineRod, default) or chromedp (EngineChromedp).
//
// # Error Handling
//
// Errors wrap sentinels and can be checked with errors.Is:
//
//	if errors.Is(err, html2pdf.ErrNoObjects) { ... }
//	if errors.Is(err, html2pdf.ErrBrowserConnect) { ... }
//
// A failed backend run returns a *ConversionError carrying every warning
// and error message the backend reported.
package html2pdf
