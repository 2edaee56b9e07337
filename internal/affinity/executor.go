package affinity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by Submit.
var (
	ErrClosed          = errors.New("executor is closed")
	ErrReentrantSubmit = errors.New("submit called from a job running on the same executor")
	ErrJobPanic        = errors.New("job panicked")
)

const defaultName = "affinity"

// Executor runs submitted work one job at a time, in submission order, on
// a single goroutine locked to one OS thread.
//
// The worker starts on first use and lives until Shutdown. A job must not
// submit to its own executor and then wait: the worker cannot run the
// nested job while it is blocked on it. Submit detects this when the job's
// context is passed along (ErrReentrantSubmit); with any other context the
// call deadlocks.
type Executor struct {
	name    string
	logger  *slog.Logger
	queue   *jobQueue
	once    sync.Once
	stopped chan struct{}
	onStop  func()
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for job lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithName labels log records, useful when several executors coexist.
func WithName(name string) Option {
	return func(e *Executor) {
		if name != "" {
			e.name = name
		}
	}
}

// WithOnStop registers fn to run on the worker after the last job, before
// Done is closed. Resources bound to the worker thread are released here.
func WithOnStop(fn func()) Option {
	return func(e *Executor) {
		e.onStop = fn
	}
}

// New creates an idle Executor. No goroutine is started until the first Submit.
func New(opts ...Option) *Executor {
	e := &Executor{
		name:    defaultName,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		queue:   newJobQueue(),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type ownerKey struct{}

type jobIDKey struct{}

// JobID returns the ID of the job whose work received ctx.
func JobID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(jobIDKey{}).(uuid.UUID)
	return id, ok
}

// Submit runs work on e's worker and blocks until it has finished.
//
// If ctx ends while the job is still queued, the job is dropped and
// ctx.Err() is returned. Once the job is running, Submit waits for it to
// complete whatever happens to ctx. work receives a context that keeps
// ctx's values but is never canceled.
//
// A panic in work is recovered and returned as ErrJobPanic; it never
// affects other jobs.
func Submit[T any](ctx context.Context, e *Executor, work func(context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if owner, _ := ctx.Value(ownerKey{}).(*Executor); owner == e {
		return zero, ErrReentrantSubmit
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	j := newJob(func(ctx context.Context) (any, error) {
		return work(ctx)
	})
	// Values survive, cancellation does not: a started job always completes.
	j.ctx = context.WithValue(context.WithoutCancel(ctx), ownerKey{}, e)
	j.ctx = context.WithValue(j.ctx, jobIDKey{}, j.id)

	if !e.queue.push(j) {
		return zero, ErrClosed
	}
	e.start()

	if err := e.await(ctx, j); err != nil {
		return zero, err
	}

	v, _ := j.result.(T)
	return v, j.err
}

// await blocks on the job's own completion signal.
func (e *Executor) await(ctx context.Context, j *job) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		if j.cancel() {
			e.logger.Debug("job abandoned before start",
				"executor", e.name,
				"job_id", j.id,
				"error", ctx.Err())
			return ctx.Err()
		}
		// Already running: the call must complete.
		<-j.done
		return nil
	}
}

// Pending returns the number of jobs waiting to start.
func (e *Executor) Pending() int {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()

	n := 0
	for _, j := range e.queue.jobs {
		if j.State() == StateQueued {
			n++
		}
	}
	return n
}

// Shutdown stops accepting jobs, lets queued jobs run to completion and
// waits for the worker to exit or for ctx to end. Safe to call repeatedly.
// Called from inside a job, it only stops intake and returns.
func (e *Executor) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.queue.close() {
		e.logger.Debug("executor shutting down",
			"executor", e.name,
			"pending", e.Pending())
	}
	if owner, _ := ctx.Value(ownerKey{}).(*Executor); owner == e {
		return nil
	}

	// Starting here covers a push that raced with close before the worker existed.
	e.start()

	select {
	case <-e.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is Shutdown without a deadline.
func (e *Executor) Close() error {
	return e.Shutdown(context.Background())
}

// Done is closed once the worker has exited.
func (e *Executor) Done() <-chan struct{} {
	return e.stopped
}

func (e *Executor) start() {
	e.once.Do(func() {
		go e.run()
	})
}

// run is the worker loop. The OS thread is never unlocked, so it exits
// together with the goroutine and no other goroutine ever inherits it.
func (e *Executor) run() {
	runtime.LockOSThread()
	defer close(e.stopped)

	e.logger.Debug("worker started", "executor", e.name)
	for {
		if j, ok := e.queue.pop(); ok {
			e.execute(j)
			continue
		}
		if e.queue.drained() {
			e.stop()
			e.logger.Debug("worker stopped", "executor", e.name)
			return
		}
		<-e.queue.wait()
	}
}

// stop runs the onStop hook. A panic is logged and does not keep Done open.
func (e *Executor) stop() {
	if e.onStop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("stop hook panicked", "executor", e.name, "panic", r)
		}
	}()
	e.onStop()
}

func (e *Executor) execute(j *job) {
	if !j.start() {
		e.logger.Debug("skipping canceled job", "executor", e.name, "job_id", j.id)
		return
	}

	began := time.Now()
	e.logger.Debug("job started", "executor", e.name, "job_id", j.id)

	result, err := e.invoke(j)
	j.finish(result, err)

	if err != nil {
		e.logger.Debug("job failed",
			"executor", e.name,
			"job_id", j.id,
			"duration", time.Since(began),
			"error", err)
		return
	}
	e.logger.Debug("job completed",
		"executor", e.name,
		"job_id", j.id,
		"duration", time.Since(began))
}

func (e *Executor) invoke(j *job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}
	}()
	return j.run(j.ctx)
}
