package main

import (
	"bytes"
	"testing"

	html2pdf "github.com/alnah/go-html2pdf"
)

func TestProgressObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := newProgressObserver(&buf)
	tracked := html2pdf.NewDocument(nil)
	other := html2pdf.NewDocument(nil)
	p.track(tracked, "report.md")

	p.PhaseChanged(html2pdf.PhaseChangedEvent{Document: tracked, Current: 1, Count: 3, Description: "Printing pages"})
	p.PhaseChanged(html2pdf.PhaseChangedEvent{Document: other, Current: 0, Count: 3, Description: "ignored"})
	p.ProgressChanged(html2pdf.ProgressChangedEvent{Document: tracked, Description: "50%"})
	p.Warning(html2pdf.WarningEvent{Document: tracked, Message: "slow font"})
	p.Error(html2pdf.ErrorEvent{Document: tracked, Message: "host not found"})
	p.untrack(tracked)
	p.Warning(html2pdf.WarningEvent{Document: tracked, Message: "late"})

	want := "report.md: [2/3] Printing pages\n" +
		"report.md: warning: slow font\n" +
		"report.md: error: host not found\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}
