package affinity

import "sync"

// jobQueue is an unbounded FIFO of pending jobs.
//
// Any goroutine may push; only the worker pops. The signal channel
// (buffered, size 1) coalesces wakeups so the worker never polls.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []*job
	closed bool
	signal chan struct{}
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:   make([]*job, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// push appends j. Returns false if the queue no longer accepts jobs.
func (q *jobQueue) push(j *job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)
	q.notify()
	return true
}

// pop removes the front job. Returns (nil, false) when empty.
func (q *jobQueue) pop() (*job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, false
	}

	j := q.jobs[0]
	q.jobs[0] = nil // release for GC
	q.jobs = q.jobs[1:]
	if len(q.jobs) == 0 {
		q.jobs = q.jobs[:0:0]
	}
	return j, true
}

// close stops accepting jobs. Already queued jobs stay poppable.
// Reports whether this call closed the queue.
func (q *jobQueue) close() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.closed = true
	q.notify()
	return true
}

// drained reports whether the queue is closed and empty.
func (q *jobQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.jobs) == 0
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// wait returns the channel the worker blocks on while the queue is empty.
func (q *jobQueue) wait() <-chan struct{} {
	return q.signal
}

// notify must be called with q.mu held.
func (q *jobQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
