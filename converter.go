package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/alnah/go-html2pdf/internal/affinity"
	"github.com/alnah/go-html2pdf/internal/engine"
	"github.com/alnah/go-html2pdf/internal/engine/cdpengine"
	"github.com/alnah/go-html2pdf/internal/engine/rodengine"
	"github.com/alnah/go-html2pdf/internal/flatconfig"
)

// Compile-time interface checks.
var (
	_ Backend        = (*engine.Engine)(nil)
	_ ConfigReleaser = (*engine.Engine)(nil)
	_ ErrorReporter  = (*engine.Engine)(nil)
	_ io.Closer      = (*engine.Engine)(nil)
)

// Converter turns Documents into PDF bytes.
//
// Any number of goroutines may call Convert. Conversions run one at a
// time, in submission order, on a single worker goroutine locked to one
// OS thread; that thread is the only caller of the backend. Create with
// NewConverter and release with Close.
type Converter struct {
	cfg     converterConfig
	exec    *affinity.Executor
	backend Backend
	obs     observers

	loaded bool // worker only

	closeOnce sync.Once
	closeErr  error
}

// NewConverter creates a Converter. Without WithBackend it drives a
// headless browser selected by WithEngine; the browser starts on the
// first conversion.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			engine:  EngineRod,
			logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.backend = c.cfg.backend
	if c.backend == nil {
		b, err := newEngineBackend(c.cfg)
		if err != nil {
			return nil, err
		}
		c.backend = b
	}

	c.exec = affinity.New(
		affinity.WithLogger(c.cfg.logger),
		affinity.WithName("html2pdf"),
		affinity.WithOnStop(c.closeBackend),
	)
	for _, obs := range c.cfg.observers {
		c.Subscribe(obs)
	}
	return c, nil
}

// newEngineBackend builds the browser-backed backend named by cfg.engine.
func newEngineBackend(cfg converterConfig) (*engine.Engine, error) {
	var r engine.Renderer
	switch cfg.engine {
	case EngineRod:
		r = rodengine.New(cfg.timeout)
	case EngineChromedp:
		r = cdpengine.New(cdpengine.WithTimeout(cfg.timeout))
	default:
		return nil, fmt.Errorf("%w: %q (must be one of %v)", ErrUnknownEngine, cfg.engine, Engines())
	}
	return engine.New(r,
		engine.WithTimeout(cfg.timeout),
		engine.WithLogger(cfg.logger),
	), nil
}

// Convert converts doc and returns the PDF bytes.
//
// doc is validated before anything is queued. If ctx ends while the
// conversion is still queued, it is dropped and ctx.Err() is returned;
// once started it always runs to completion. doc must not be modified
// until Convert returns.
func (c *Converter) Convert(ctx context.Context, doc *Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return affinity.Submit(ctx, c.exec, func(ctx context.Context) ([]byte, error) {
		return c.convert(ctx, doc)
	})
}

// Pending returns the number of conversions waiting to start.
func (c *Converter) Pending() int {
	return c.exec.Pending()
}

// convert drives one backend conversion. It runs on the worker only.
func (c *Converter) convert(ctx context.Context, doc *Document) (pdf []byte, err error) {
	id, _ := affinity.JobID(ctx)
	log := c.cfg.logger.With("job_id", id)

	if err := c.load(); err != nil {
		log.Warn("backend load failed", "error", err)
		return nil, err
	}

	global, err := c.backend.CreateGlobalConfig()
	if err != nil {
		return nil, backendErr("create global config", err)
	}
	if err := c.apply(global, doc.Global, true); err != nil {
		c.release(log, global)
		log.Warn("global settings rejected", "error", err)
		return nil, err
	}

	conv, err := c.backend.CreateConverter(global)
	if err != nil {
		c.release(log, global)
		return nil, backendErr("create converter", err)
	}
	// The converter owns every config handed to it from here on.
	defer func() {
		if derr := c.backend.DestroyConverter(conv); derr != nil {
			log.Warn("destroy converter failed", "error", derr)
			if err == nil {
				pdf, err = nil, backendErr("destroy converter", derr)
			}
		}
	}()

	for i, obj := range doc.Objects {
		if obj == nil {
			continue
		}
		if err := c.addObject(conv, obj); err != nil {
			log.Warn("object rejected", "object", i, "error", err)
			return nil, err
		}
	}

	jr := newJobRelay(&c.obs, doc, id)
	if err := c.backend.RegisterCallbacks(conv, jr.callbacks()); err != nil {
		return nil, backendErr("register callbacks", err)
	}

	if !c.backend.RunConversion(conv) {
		var cause error
		if r, ok := c.backend.(ErrorReporter); ok {
			cause = r.ConversionErr(conv)
		}
		ferr := jr.failure(cause)
		log.Warn("conversion failed", "error", ferr, "warnings", len(ferr.Warnings))
		return nil, ferr
	}

	pdf, err = c.backend.FetchResult(conv)
	if err != nil {
		return nil, backendErr("fetch result", err)
	}
	log.Debug("conversion done", "objects", doc.objectCount(), "bytes", len(pdf))
	return pdf, nil
}

// load initializes the backend once. A failed load is retried by the
// next conversion.
func (c *Converter) load() error {
	if c.loaded {
		return nil
	}
	if err := c.backend.Load(); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendLoad, err)
	}
	c.loaded = true
	return nil
}

func (c *Converter) addObject(conv Handle, obj *ContentObject) error {
	h, err := c.backend.CreateObjectConfig()
	if err != nil {
		return backendErr("create object config", err)
	}
	if err := c.apply(h, obj.Settings, false); err != nil {
		c.release(c.cfg.logger, h)
		return err
	}
	if err := c.backend.AddObject(conv, h, obj.Content); err != nil {
		c.release(c.cfg.logger, h)
		return backendErr("add object", err)
	}
	return nil
}

// apply marshals s and sends every setting to config.
func (c *Converter) apply(config Handle, s Settings, global bool) error {
	settings, err := flatconfig.Marshal(s)
	if err != nil {
		scope := "object"
		if global {
			scope = "global"
		}
		return fmt.Errorf("%s settings: %w", scope, err)
	}
	for _, st := range settings {
		if err := c.backend.SetConfigValue(config, st.BackendKey(), st.Value, global); err != nil {
			return backendErr("set "+st.BackendKey(), err)
		}
	}
	return nil
}

// release frees a config never handed to a converter, when the backend can.
func (c *Converter) release(log *slog.Logger, config Handle) {
	r, ok := c.backend.(ConfigReleaser)
	if !ok {
		return
	}
	if err := r.DestroyConfig(config); err != nil {
		log.Warn("release config failed", "config", uint64(config), "error", err)
	}
}

func backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}

// Shutdown stops accepting conversions, runs the ones already queued and
// releases the backend on the worker thread. It returns ctx.Err() if ctx
// ends first; the worker then keeps draining and releases the backend in
// the background. Safe to call repeatedly.
//
// Shutdown waits for the worker, so it must not be called from an
// observer.
func (c *Converter) Shutdown(ctx context.Context) error {
	if err := c.exec.Shutdown(ctx); err != nil {
		return err
	}
	// Written by the worker before Done closes.
	return c.closeErr
}

// Close is Shutdown without a deadline.
func (c *Converter) Close() error {
	return c.Shutdown(context.Background())
}

// closeBackend runs on the worker once the queue has drained.
func (c *Converter) closeBackend() {
	c.closeOnce.Do(func() {
		if cl, ok := c.backend.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				c.closeErr = errors.Join(ErrBackend, err)
			}
		}
	})
}
