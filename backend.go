package html2pdf

import "github.com/alnah/go-html2pdf/internal/backend"

// Backend is the non-reentrant conversion capability driven by a
// Converter. Every call happens on the Converter's worker thread.
type Backend = backend.Backend

// Handle is an opaque backend config or converter reference.
type Handle = backend.Handle

// Phase describes one backend conversion phase.
type Phase = backend.Phase

// Callbacks receive backend notifications during RunConversion.
type Callbacks = backend.Callbacks

// ConfigReleaser is implemented by backends that can release a config
// never handed to a converter.
type ConfigReleaser = backend.ConfigReleaser

// ErrorReporter is implemented by backends that keep the typed cause of a
// failed run.
type ErrorReporter = backend.ErrorReporter
