package html2pdf

import (
	"errors"
	"strings"

	"github.com/alnah/go-html2pdf/internal/affinity"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/engine"
	"github.com/alnah/go-html2pdf/internal/flatconfig"
)

// Sentinel errors for library operations.
var (
	// Document validation errors. An invalid document never reaches the backend.
	ErrNilDocument = errors.New("document is nil")
	ErrNoObjects   = errors.New("document has no content objects")

	// Executor errors.
	ErrClosed          = affinity.ErrClosed
	ErrReentrantSubmit = affinity.ErrReentrantSubmit
	ErrJobPanic        = affinity.ErrJobPanic

	// Backend errors.
	ErrBackendLoad      = errors.New("conversion backend failed to load")
	ErrBackend          = errors.New("conversion backend call failed")
	ErrConversionFailed = errors.New("conversion failed")

	// ErrMarshal matches settings that cannot be flattened; the concrete
	// error is a *MarshalError. Typed fields always flatten, so in practice
	// it comes from an ObjectSettings.Extra value of an unsupported kind.
	ErrMarshal = flatconfig.ErrUnsupportedValue

	// Browser engine errors.
	ErrBrowserConnect = engine.ErrBrowserConnect
	ErrPageLoad       = engine.ErrPageLoad
	ErrPDFGeneration  = engine.ErrPDFGeneration
	ErrUnknownEngine  = errors.New("unknown engine")

	// Settings validation errors.
	ErrInvalidColorMode   = errors.New("invalid color mode")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidPaperSize   = errors.New("invalid paper size")

	// Builder and profile errors.
	ErrStylesheetNotFound = errors.New("stylesheet file not found")
	ErrProfileNotFound    = config.ErrConfigNotFound
	ErrProfileParse       = config.ErrConfigParse
	ErrProfileInvalid     = config.ErrInvalidField
	ErrFieldTooLong       = config.ErrFieldTooLong
)

// MarshalError describes a settings leaf that could not be flattened.
type MarshalError = flatconfig.Error

// ConversionError is returned when the backend reports a failed run.
// It carries every warning and error message the backend emitted.
type ConversionError struct {
	Document *Document
	Warnings []string
	Errors   []string
	Cause    error // typed backend error, when the backend reports one
}

func (e *ConversionError) Error() string {
	msg := ErrConversionFailed.Error()
	switch {
	case len(e.Errors) > 0:
		msg += ": " + strings.Join(e.Errors, "; ")
	case e.Cause != nil:
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrConversionFailed, e.Cause}
	}
	return []error{ErrConversionFailed}
}
