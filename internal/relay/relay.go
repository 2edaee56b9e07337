// Package relay keeps mutation-safe observer lists and dispatches
// notifications synchronously, in order, against a snapshot.
package relay

import (
	"sync"
	"sync/atomic"
)

type entry[E any] struct {
	id uint64
	fn func(E)
}

// List is a copy-on-write list of observers for one event type.
//
// Subscribe and unsubscribe may be called from any goroutine. Dispatch
// iterates over the snapshot current when it began; changes made while it
// runs only affect later dispatches. The zero value is ready to use.
type List[E any] struct {
	mu      sync.Mutex // serializes writers
	nextID  uint64
	entries atomic.Pointer[[]entry[E]]
}

// Subscribe adds fn and returns a function removing it.
// The returned function is idempotent. A nil fn is ignored.
func (l *List[E]) Subscribe(fn func(E)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	old := l.snapshot()
	next := make([]entry[E], len(old), len(old)+1)
	copy(next, old)
	next = append(next, entry[E]{id: id, fn: fn})
	l.entries.Store(&next)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *List[E]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := l.snapshot()
	next := make([]entry[E], 0, len(old))
	for _, e := range old {
		if e.id != id {
			next = append(next, e)
		}
	}
	l.entries.Store(&next)
}

// Dispatch calls every observer of the current snapshot, in subscription
// order, on the calling goroutine.
func (l *List[E]) Dispatch(event E) {
	for _, e := range l.snapshot() {
		e.fn(event)
	}
}

// Len returns the number of observers.
func (l *List[E]) Len() int {
	return len(l.snapshot())
}

func (l *List[E]) snapshot() []entry[E] {
	if p := l.entries.Load(); p != nil {
		return *p
	}
	return nil
}
