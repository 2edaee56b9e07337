package relay

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_DispatchInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	var l List[int]
	var got []string
	l.Subscribe(func(v int) { got = append(got, "a") })
	l.Subscribe(func(v int) { got = append(got, "b") })

	l.Dispatch(1)
	l.Dispatch(2)

	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestList_Unsubscribe(t *testing.T) {
	t.Parallel()

	var l List[string]
	var got []string
	unsubA := l.Subscribe(func(v string) { got = append(got, "a:"+v) })
	l.Subscribe(func(v string) { got = append(got, "b:"+v) })

	l.Dispatch("1")
	unsubA()
	unsubA() // idempotent
	l.Dispatch("2")

	assert.Equal(t, []string{"a:1", "b:1", "b:2"}, got)
	assert.Equal(t, 1, l.Len())
}

func TestList_NilObserverIgnored(t *testing.T) {
	t.Parallel()

	var l List[int]
	unsub := l.Subscribe(nil)
	unsub()
	assert.Zero(t, l.Len())
	l.Dispatch(1) // no panic
}

func TestList_SnapshotDuringDispatch(t *testing.T) {
	t.Parallel()

	var l List[int]
	var got []string
	var unsubSecond func()

	l.Subscribe(func(int) {
		got = append(got, "first")
		// Changes made mid-dispatch apply to the next dispatch only.
		unsubSecond()
		l.Subscribe(func(int) { got = append(got, "late") })
	})
	unsubSecond = l.Subscribe(func(int) { got = append(got, "second") })

	l.Dispatch(1)
	assert.Equal(t, []string{"first", "second"}, got)

	got = nil
	l.Dispatch(2)
	assert.Equal(t, []string{"first", "late"}, got)
}

func TestList_ConcurrentSubscribe(t *testing.T) {
	t.Parallel()

	var l List[int]
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := l.Subscribe(func(int) {})
			l.Dispatch(0)
			unsub()
		}()
	}
	wg.Wait()

	assert.Zero(t, l.Len())
}
