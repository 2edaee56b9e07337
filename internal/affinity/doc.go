// Package affinity serializes work onto one dedicated goroutine that is
// locked to a single OS thread.
//
// It exists for resources that must never be entered concurrently and
// must always be called from the same thread, such as native conversion
// libraries. Callers on any goroutine use Submit and block on a per-job
// completion signal, so exactly one waiter is woken per finished job:
//
//	exec := affinity.New(affinity.WithLogger(logger))
//	defer exec.Close()
//
//	pdf, err := affinity.Submit(ctx, exec, func(ctx context.Context) ([]byte, error) {
//	    return backend.Convert(doc) // runs on the worker thread
//	})
//
// Jobs run strictly one at a time in submission order. On shutdown,
// intake stops and already queued jobs are drained before the worker exits.
package affinity
