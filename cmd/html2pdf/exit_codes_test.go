package main

// Notes:
// - exitCodeFor: we test sentinel errors from the library and the CLI,
//   plus wrapped errors to verify the errors.Is() chain.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	html2pdf "github.com/alnah/go-html2pdf"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", html2pdf.ErrBrowserConnect, ExitBrowser},
		{"page load", html2pdf.ErrPageLoad, ExitBrowser},
		{"pdf generation", html2pdf.ErrPDFGeneration, ExitBrowser},
		{"backend load", html2pdf.ErrBackendLoad, ExitBrowser},
		{"conversion with browser cause", &html2pdf.ConversionError{Cause: html2pdf.ErrPageLoad}, ExitBrowser},
		{"wrapped browser connect", fmt.Errorf("failed: %w", html2pdf.ErrBrowserConnect), ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"read css", ErrReadCSS, ExitIO},
		{"read data", ErrReadData, ExitIO},
		{"write pdf", ErrWritePDF, ExitIO},
		{"create output dir", ErrCreateOutputDir, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"profile not found", html2pdf.ErrProfileNotFound, ExitUsage},
		{"profile parse", html2pdf.ErrProfileParse, ExitUsage},
		{"profile invalid", html2pdf.ErrProfileInvalid, ExitUsage},
		{"field too long", html2pdf.ErrFieldTooLong, ExitUsage},
		{"unknown engine", html2pdf.ErrUnknownEngine, ExitUsage},
		{"color mode", html2pdf.ErrInvalidColorMode, ExitUsage},
		{"orientation", html2pdf.ErrInvalidOrientation, ExitUsage},
		{"paper size", html2pdf.ErrInvalidPaperSize, ExitUsage},
		{"no objects", html2pdf.ErrNoObjects, ExitUsage},
		{"template", html2pdf.ErrTemplate, ExitUsage},
		{"markdown", html2pdf.ErrMarkdown, ExitUsage},
		{"unsupported input", ErrUnsupportedInput, ExitUsage},
		{"invalid flag", ErrInvalidFlag, ExitUsage},
		{"env config", ErrEnvConfig, ExitUsage},
		{"nothing to watch", ErrNothingToWatch, ExitUsage},
		{"wrapped template", fmt.Errorf("1 conversion(s) failed: %w", html2pdf.ErrTemplate), ExitUsage},

		// General errors (exit 1)
		{"conversion failed", &html2pdf.ConversionError{Errors: []string{"boom"}}, ExitGeneral},
		{"closed", html2pdf.ErrClosed, ExitGeneral},
		{"unknown error", errors.New("something else"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 || ExitGeneral != 1 || ExitUsage != 2 {
		t.Errorf("standard codes = %d/%d/%d, want 0/1/2", ExitSuccess, ExitGeneral, ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code >= 126 {
			t.Errorf("custom code %d must be below 126", code)
		}
	}
}
