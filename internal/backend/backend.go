// Package backend defines the capability set of a conversion backend.
//
// A backend is a non-reentrant resource driven through opaque handles,
// following the flat configuration protocol of wkhtmltopdf: create config
// handles, set string key/value pairs on them, create a converter from the
// global config, add one object per page, run, fetch, destroy.
//
// Implementations may assume that every call happens on the same goroutine
// (and OS thread) and that no two calls ever overlap. This includes Close
// when the backend implements io.Closer.
package backend

// Handle is an opaque reference to a backend-owned config or converter.
// The zero Handle is never valid.
type Handle uint64

// Phase describes one conversion phase.
type Phase struct {
	Current     int
	Count       int
	Description string
}

// Callbacks receive backend notifications. They are called synchronously
// from inside RunConversion. Nil fields are skipped.
type Callbacks struct {
	PhaseChanged    func(Phase)
	ProgressChanged func(description string)
	Finished        func(success bool)
	Warning         func(message string)
	Error           func(message string)
}

// Backend is the native conversion capability.
//
// Config handles are valid from creation until the converter that owns
// them is destroyed. Handles must never be shared across conversions.
type Backend interface {
	// Load initializes the backend. It is called before any other method
	// and repeated until it succeeds once.
	Load() error

	CreateGlobalConfig() (Handle, error)
	CreateObjectConfig() (Handle, error)

	// SetConfigValue applies one flat setting. global tells whether config
	// is a global or an object config.
	SetConfigValue(config Handle, key, value string, global bool) error

	// CreateConverter takes ownership of the global config.
	CreateConverter(global Handle) (Handle, error)

	// AddObject takes ownership of the object config.
	AddObject(converter, object Handle, content string) error

	RegisterCallbacks(converter Handle, cb Callbacks) error

	// RunConversion reports whether the conversion succeeded. Failure
	// details are delivered through the Error callback.
	RunConversion(converter Handle) bool

	FetchResult(converter Handle) ([]byte, error)

	// DestroyConverter releases the converter and every config it owns.
	DestroyConverter(converter Handle) error
}

// ConfigReleaser is implemented by backends that can release a config
// handle never handed to a converter.
type ConfigReleaser interface {
	DestroyConfig(config Handle) error
}

// ErrorReporter is implemented by backends that keep the typed cause of a
// failed run, next to the messages sent to the Error callback.
type ErrorReporter interface {
	ConversionErr(converter Handle) error
}
