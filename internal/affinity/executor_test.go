package affinity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 5 * time.Second

// goroutineID parses the current goroutine's ID from its stack header.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	id, _ := strconv.ParseUint(string(buf[:bytes.IndexByte(buf, ' ')]), 10, 64)
	return id
}

// blockWorker occupies the worker until the returned release func is called.
func blockWorker(t *testing.T, e *Executor) (release func()) {
	t.Helper()

	started := make(chan struct{})
	gate := make(chan struct{})
	go func() {
		_, _ = Submit(context.Background(), e, func(context.Context) (struct{}, error) {
			close(started)
			<-gate
			return struct{}{}, nil
		})
	}()

	select {
	case <-started:
	case <-time.After(testTimeout):
		t.Fatal("blocking job never started")
	}
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func isClosed(e *Executor) bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed
}

// waitPending polls until n jobs are queued.
func waitPending(t *testing.T, e *Executor, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return e.Pending() == n }, testTimeout, time.Millisecond)
}

func TestSubmit_ReturnsResult(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	got, err := Submit(context.Background(), e, func(context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestSubmit_FIFOOneAtATime(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	release := blockWorker(t, e)

	const n = 20
	var (
		mu       sync.Mutex
		order    []int
		running  atomic.Int32
		overlaps atomic.Int32
		wg       sync.WaitGroup
		results  = make([]int, n)
	)

	// Enqueue one at a time so submission order is known.
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := Submit(context.Background(), e, func(context.Context) (int, error) {
				if running.Add(1) > 1 {
					overlaps.Add(1)
				}
				defer running.Add(-1)

				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				time.Sleep(time.Millisecond)
				return i * 10, nil
			})
			assert.NoError(t, err)
			results[i] = got
		}(i)
		waitPending(t, e, i+1)
	}

	release()
	wg.Wait()

	want := make([]int, n)
	for i := range want {
		want[i] = i
		assert.Equal(t, i*10, results[i], "submitter %d got another job's result", i)
	}
	assert.Equal(t, want, order)
	assert.Zero(t, overlaps.Load(), "jobs overlapped")
}

func TestSubmit_ConcurrentCallersGetOwnResults(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	const n = 100
	var (
		executions atomic.Int32
		wg         sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := Submit(context.Background(), e, func(context.Context) (string, error) {
				executions.Add(1)
				return fmt.Sprintf("job-%d", i), nil
			})
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("job-%d", i), got)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, n, executions.Load())
}

func TestSubmit_FailureIsolated(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	errJob2 := errors.New("job 2 failed")
	release := blockWorker(t, e)

	type outcome struct {
		val string
		err error
	}
	outcomes := make([]outcome, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Submit(context.Background(), e, func(context.Context) (string, error) {
				if i == 1 {
					return "", errJob2
				}
				return fmt.Sprintf("result-%d", i+1), nil
			})
			outcomes[i] = outcome{v, err}
		}(i)
		waitPending(t, e, i+1)
	}
	release()
	wg.Wait()

	assert.NoError(t, outcomes[0].err)
	assert.Equal(t, "result-1", outcomes[0].val)
	assert.ErrorIs(t, outcomes[1].err, errJob2)
	assert.NoError(t, outcomes[2].err)
	assert.Equal(t, "result-3", outcomes[2].val)
}

func TestSubmit_PanicCapturedWorkerSurvives(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	_, err := Submit(context.Background(), e, func(context.Context) (int, error) {
		panic("boom")
	})
	require.ErrorIs(t, err, ErrJobPanic)
	assert.Contains(t, err.Error(), "boom")

	got, err := Submit(context.Background(), e, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestSubmit_AfterShutdown(t *testing.T) {
	t.Parallel()

	e := New()
	require.NoError(t, e.Close())

	called := false
	_, err := Submit(context.Background(), e, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})
	require.ErrorIs(t, err, ErrClosed)
	assert.False(t, called)
}

func TestShutdown_DrainsQueuedJobs(t *testing.T) {
	t.Parallel()

	e := New()
	release := blockWorker(t, e)

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Submit(context.Background(), e, func(context.Context) (int, error) {
				ran.Add(1)
				return 0, nil
			})
			assert.NoError(t, err)
		}()
	}
	waitPending(t, e, 3)

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- e.Shutdown(context.Background()) }()

	// Intake is closed even though the worker is still busy.
	require.Eventually(t, func() bool { return isClosed(e) }, testTimeout, time.Millisecond)
	_, err := Submit(context.Background(), e, func(context.Context) (int, error) { return 0, nil })
	require.ErrorIs(t, err, ErrClosed)

	release()
	wg.Wait()
	require.NoError(t, <-shutdownErr)
	assert.EqualValues(t, 3, ran.Load())

	select {
	case <-e.Done():
	default:
		t.Fatal("worker still running after Shutdown returned")
	}
}

func TestShutdown_Idempotent(t *testing.T) {
	t.Parallel()

	e := New()
	_, err := Submit(context.Background(), e, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	require.NoError(t, e.Shutdown(context.Background()))
}

func TestShutdown_NeverStarted(t *testing.T) {
	t.Parallel()

	e := New()
	require.NoError(t, e.Close())
}

func TestShutdown_OnStopRunsOnWorkerAfterQueue(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		events []string
		jobG   uint64
		stopG  uint64
	)
	record := func(ev string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}

	e := New(WithOnStop(func() {
		stopG = goroutineID()
		record("stop")
	}))
	release := blockWorker(t, e)

	queued := make(chan error, 1)
	go func() {
		_, err := Submit(context.Background(), e, func(context.Context) (struct{}, error) {
			jobG = goroutineID()
			record("job")
			return struct{}{}, nil
		})
		queued <- err
	}()
	require.Eventually(t, func() bool { return e.Pending() == 1 }, testTimeout, time.Millisecond)

	shut := make(chan error, 1)
	go func() { shut <- e.Close() }()
	release()

	require.NoError(t, <-shut)
	require.NoError(t, <-queued)
	assert.Equal(t, []string{"job", "stop"}, events)
	assert.Equal(t, jobG, stopG)
	assert.NotZero(t, stopG)
}

func TestShutdown_OnStopPanicStillStops(t *testing.T) {
	t.Parallel()

	e := New(WithOnStop(func() { panic("boom") }))
	_, err := Submit(context.Background(), e, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)

	require.NoError(t, e.Close())
	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed after a panicking stop hook")
	}
}

func TestShutdown_NeverStartedRunsOnStop(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	e := New(WithOnStop(func() { calls.Add(1) }))
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Equal(t, int32(1), calls.Load())
}

func TestShutdown_BoundedByContext(t *testing.T) {
	t.Parallel()

	e := New()
	release := blockWorker(t, e)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Shutdown(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubmit_CanceledWhileQueuedNeverRuns(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	release := blockWorker(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	errc := make(chan error, 1)
	go func() {
		_, err := Submit(ctx, e, func(context.Context) (int, error) {
			ran.Store(true)
			return 0, nil
		})
		errc <- err
	}()
	waitPending(t, e, 1)

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	assert.Zero(t, e.Pending())

	release()
	// A later job still runs, after the skipped one.
	_, err := Submit(context.Background(), e, func(context.Context) (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.False(t, ran.Load())
}

func TestSubmit_CanceledWhileRunningWaitsForCompletion(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	gate := make(chan struct{})

	type res struct {
		v   int
		err error
	}
	out := make(chan res, 1)
	go func() {
		v, err := Submit(ctx, e, func(jobCtx context.Context) (int, error) {
			close(started)
			<-gate
			return 42, jobCtx.Err()
		})
		out <- res{v, err}
	}()

	<-started
	cancel()

	select {
	case <-out:
		t.Fatal("Submit returned while its job was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate)
	r := <-out
	require.NoError(t, r.err, "job context must not be canceled")
	assert.Equal(t, 42, r.v)
}

func TestSubmit_AlreadyCanceledContext(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Submit(ctx, e, func(context.Context) (int, error) { return 0, nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_ReentrantDetected(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	_, err := Submit(context.Background(), e, func(ctx context.Context) (int, error) {
		return Submit(ctx, e, func(context.Context) (int, error) { return 1, nil })
	})
	require.ErrorIs(t, err, ErrReentrantSubmit)
}

func TestSubmit_OtherExecutorFromJob(t *testing.T) {
	t.Parallel()

	outer, inner := New(), New()
	defer outer.Close()
	defer inner.Close()

	got, err := Submit(context.Background(), outer, func(ctx context.Context) (int, error) {
		return Submit(ctx, inner, func(context.Context) (int, error) { return 5, nil })
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestSubmit_JobIDAndValuesPropagate(t *testing.T) {
	t.Parallel()

	e := New()
	defer e.Close()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "trace-1")

	var seen []string
	for i := 0; i < 2; i++ {
		id, err := Submit(ctx, e, func(ctx context.Context) (string, error) {
			assert.Equal(t, "trace-1", ctx.Value(key{}))
			id, ok := JobID(ctx)
			assert.True(t, ok)
			return id.String(), nil
		})
		require.NoError(t, err)
		seen = append(seen, id)
	}
	assert.NotEqual(t, seen[0], seen[1])

	_, ok := JobID(context.Background())
	assert.False(t, ok)
}

func TestShutdown_FromInsideJob(t *testing.T) {
	t.Parallel()

	e := New()

	_, err := Submit(context.Background(), e, func(ctx context.Context) (int, error) {
		return 0, e.Shutdown(ctx)
	})
	require.NoError(t, err)

	select {
	case <-e.Done():
	case <-time.After(testTimeout):
		t.Fatal("worker did not stop")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "queued", StateQueued.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "canceled", StateCanceled.String())
	assert.Equal(t, "unknown", State(99).String())
}
