package html2pdf

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/alnah/go-html2pdf/internal/backend"
	"github.com/alnah/go-html2pdf/internal/relay"
)

// PhaseChangedEvent reports that the backend entered a new phase.
type PhaseChangedEvent struct {
	Document    *Document
	JobID       uuid.UUID
	Current     int
	Count       int
	Description string
}

// ProgressChangedEvent carries a backend progress string.
type ProgressChangedEvent struct {
	Document    *Document
	JobID       uuid.UUID
	Description string
}

// FinishedEvent reports the end of a backend run.
type FinishedEvent struct {
	Document *Document
	JobID    uuid.UUID
	Success  bool
}

// WarningEvent carries a non-fatal backend message.
type WarningEvent struct {
	Document *Document
	JobID    uuid.UUID
	Message  string
}

// ErrorEvent carries a backend error message.
type ErrorEvent struct {
	Document *Document
	JobID    uuid.UUID
	Message  string
}

// Observer receives every event kind. Embed NopObserver to implement
// only some of them.
type Observer interface {
	PhaseChanged(PhaseChangedEvent)
	ProgressChanged(ProgressChangedEvent)
	Finished(FinishedEvent)
	Warning(WarningEvent)
	Error(ErrorEvent)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PhaseChanged(PhaseChangedEvent)       {}
func (NopObserver) ProgressChanged(ProgressChangedEvent) {}
func (NopObserver) Finished(FinishedEvent)               {}
func (NopObserver) Warning(WarningEvent)                 {}
func (NopObserver) Error(ErrorEvent)                     {}

var _ Observer = NopObserver{}

// observers holds one copy-on-write list per event kind.
type observers struct {
	phase    relay.List[PhaseChangedEvent]
	progress relay.List[ProgressChangedEvent]
	finished relay.List[FinishedEvent]
	warning  relay.List[WarningEvent]
	err      relay.List[ErrorEvent]
}

// OnPhaseChanged registers fn for phase changes.
//
// Observers are called synchronously on the conversion worker, in
// subscription order, so a slow observer delays every queued conversion.
// A panicking observer is logged and skipped; it never changes the result
// of a conversion. The returned function removes the observer; it is safe
// to call more than once and from any goroutine, including from inside an
// observer. The same holds for the other On methods.
func (c *Converter) OnPhaseChanged(fn func(PhaseChangedEvent)) (unsubscribe func()) {
	return c.obs.phase.Subscribe(guard(c.cfg.logger, "phase", fn))
}

// OnProgressChanged registers fn for progress updates.
func (c *Converter) OnProgressChanged(fn func(ProgressChangedEvent)) (unsubscribe func()) {
	return c.obs.progress.Subscribe(guard(c.cfg.logger, "progress", fn))
}

// OnFinished registers fn for run completion.
func (c *Converter) OnFinished(fn func(FinishedEvent)) (unsubscribe func()) {
	return c.obs.finished.Subscribe(guard(c.cfg.logger, "finished", fn))
}

// OnWarning registers fn for backend warnings.
func (c *Converter) OnWarning(fn func(WarningEvent)) (unsubscribe func()) {
	return c.obs.warning.Subscribe(guard(c.cfg.logger, "warning", fn))
}

// OnError registers fn for backend error messages.
func (c *Converter) OnError(fn func(ErrorEvent)) (unsubscribe func()) {
	return c.obs.err.Subscribe(guard(c.cfg.logger, "error", fn))
}

// Subscribe registers every method of obs.
func (c *Converter) Subscribe(obs Observer) (unsubscribe func()) {
	if obs == nil {
		return func() {}
	}
	unsubs := []func(){
		c.OnPhaseChanged(obs.PhaseChanged),
		c.OnProgressChanged(obs.ProgressChanged),
		c.OnFinished(obs.Finished),
		c.OnWarning(obs.Warning),
		c.OnError(obs.Error),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// guard recovers a panicking observer so the remaining observers and the
// conversion carry on.
func guard[E any](log *slog.Logger, event string, fn func(E)) func(E) {
	if fn == nil {
		return nil
	}
	return func(e E) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("observer panicked", "event", event, "panic", r)
			}
		}()
		fn(e)
	}
}

// jobRelay translates backend callbacks for one job into events tagged
// with the in-flight document. It lives on the worker only.
type jobRelay struct {
	obs      *observers
	doc      *Document
	id       uuid.UUID
	warnings []string
	errors   []string
}

func newJobRelay(obs *observers, doc *Document, id uuid.UUID) *jobRelay {
	return &jobRelay{obs: obs, doc: doc, id: id}
}

func (r *jobRelay) callbacks() backend.Callbacks {
	return backend.Callbacks{
		PhaseChanged: func(p backend.Phase) {
			r.obs.phase.Dispatch(PhaseChangedEvent{
				Document:    r.doc,
				JobID:       r.id,
				Current:     p.Current,
				Count:       p.Count,
				Description: p.Description,
			})
		},
		ProgressChanged: func(desc string) {
			r.obs.progress.Dispatch(ProgressChangedEvent{Document: r.doc, JobID: r.id, Description: desc})
		},
		Finished: func(success bool) {
			r.obs.finished.Dispatch(FinishedEvent{Document: r.doc, JobID: r.id, Success: success})
		},
		Warning: func(msg string) {
			r.warnings = append(r.warnings, msg)
			r.obs.warning.Dispatch(WarningEvent{Document: r.doc, JobID: r.id, Message: msg})
		},
		Error: func(msg string) {
			r.errors = append(r.errors, msg)
			r.obs.err.Dispatch(ErrorEvent{Document: r.doc, JobID: r.id, Message: msg})
		},
	}
}

// failure builds the error for a failed run.
func (r *jobRelay) failure(cause error) *ConversionError {
	return &ConversionError{
		Document: r.doc,
		Warnings: r.warnings,
		Errors:   r.errors,
		Cause:    cause,
	}
}
