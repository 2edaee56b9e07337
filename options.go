package html2pdf

import (
	"log/slog"
	"time"
)

// Engine names accepted by WithEngine.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Engines returns the names accepted by WithEngine.
func Engines() []string {
	return []string{EngineRod, EngineChromedp}
}

// defaultTimeout bounds one browser render when no timeout is specified.
const defaultTimeout = 30 * time.Second

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds construction-time settings.
type converterConfig struct {
	timeout   time.Duration
	engine    string
	backend   Backend
	logger    *slog.Logger
	observers []Observer
}

// WithBackend drives b instead of a browser engine. b is only ever called
// from the Converter's worker thread.
func WithBackend(b Backend) Option {
	return func(c *Converter) {
		c.cfg.backend = b
	}
}

// WithEngine selects the browser engine: EngineRod (default) or
// EngineChromedp. Ignored when WithBackend is used.
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.cfg.engine = name
	}
}

// WithTimeout sets the per-render browser timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger for conversion lifecycle records.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithObserver registers obs for every event kind.
func WithObserver(obs Observer) Option {
	return func(c *Converter) {
		if obs != nil {
			c.cfg.observers = append(c.cfg.observers, obs)
		}
	}
}
