package affinity

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle position of a job.
type State int32

// Job states. Queued moves to Running or Canceled; Running ends in
// Completed or Failed.
const (
	StateQueued State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// job is one queued unit of work. The executor owns it from enqueue to
// completion; the submitter only waits on done.
type job struct {
	id    uuid.UUID
	ctx   context.Context
	run   func(context.Context) (any, error)
	state atomic.Int32

	// Written by the worker before done is closed.
	result any
	err    error
	done   chan struct{}
}

func newJob(run func(context.Context) (any, error)) *job {
	return &job{
		id:   uuid.New(),
		run:  run,
		done: make(chan struct{}),
	}
}

// start moves the job to Running. Fails if the submitter already gave up.
func (j *job) start() bool {
	return j.state.CompareAndSwap(int32(StateQueued), int32(StateRunning))
}

// cancel moves the job to Canceled. Fails once the worker picked it up.
func (j *job) cancel() bool {
	return j.state.CompareAndSwap(int32(StateQueued), int32(StateCanceled))
}

// finish records the outcome and wakes the submitter. Called once, by the worker.
func (j *job) finish(result any, err error) {
	j.result, j.err = result, err
	if err != nil {
		j.state.Store(int32(StateFailed))
	} else {
		j.state.Store(int32(StateCompleted))
	}
	close(j.done)
}

func (j *job) State() State {
	return State(j.state.Load())
}
