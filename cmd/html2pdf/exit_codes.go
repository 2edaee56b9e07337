package main

import (
	"errors"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
)

// Exit codes for the html2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, profile, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, html2pdf.ErrBrowserConnect) ||
		errors.Is(err, html2pdf.ErrPageLoad) ||
		errors.Is(err, html2pdf.ErrPDFGeneration) ||
		errors.Is(err, html2pdf.ErrBackendLoad) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrReadData) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, html2pdf.ErrProfileNotFound) ||
		errors.Is(err, html2pdf.ErrProfileParse) ||
		errors.Is(err, html2pdf.ErrProfileInvalid) ||
		errors.Is(err, html2pdf.ErrFieldTooLong) ||
		errors.Is(err, html2pdf.ErrUnknownEngine) ||
		errors.Is(err, html2pdf.ErrInvalidColorMode) ||
		errors.Is(err, html2pdf.ErrInvalidOrientation) ||
		errors.Is(err, html2pdf.ErrInvalidPaperSize) ||
		errors.Is(err, html2pdf.ErrNoObjects) ||
		errors.Is(err, html2pdf.ErrTemplate) ||
		errors.Is(err, html2pdf.ErrMarkdown) ||
		errors.Is(err, ErrUnsupportedInput) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrNothingToWatch) ||
		errors.Is(err, ErrEnvConfig) {
		return ExitUsage
	}

	return ExitGeneral
}
