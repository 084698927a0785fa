package pool

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, opts Options) *Pool {
	t.Helper()
	p, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, p.Start())
	return p
}

func TestNewRejectsNonPositiveWorkers(t *testing.T) {
	_, err := New(Options{MaxWorkers: 0})
	require.Error(t, err)
}

func TestAllTasksRunToCompletion(t *testing.T) {
	p := mustNew(t, Options{MaxWorkers: 4, ErrorThreshold: 0})

	var completed int64
	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(func() (any, error) {
			atomic.AddInt64(&completed, 1)
			return nil, nil
		}, fmt.Sprintf("job-%d", i)))
	}

	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	assert.EqualValues(t, 50, atomic.LoadInt64(&completed))
	assert.True(t, p.IsFinished())
}

// Property #4: the pool never exceeds max_workers concurrent in-flight tasks.
func TestNeverExceedsMaxWorkers(t *testing.T) {
	const maxWorkers = 3
	p := mustNew(t, Options{MaxWorkers: maxWorkers, ErrorThreshold: 0})

	var inFlight, peak int64
	release := make(chan struct{})
	for i := 0; i < 20; i++ {
		require.NoError(t, p.Submit(func() (any, error) {
			cur := atomic.AddInt64(&inFlight, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
					break
				}
			}
			<-release
			atomic.AddInt64(&inFlight, -1)
			return nil, nil
		}, fmt.Sprintf("job-%d", i)))
	}

	// Let a few workers actually reach the "in flight" section.
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(maxWorkers))
	close(release)

	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(maxWorkers))
}

// Property #5: when the error budget is k and k+1 tasks fail, the pool
// surfaces exactly k+1 errors in a composite exception and transitions to
// Finished.
func TestErrorThresholdExceeded(t *testing.T) {
	const threshold = 2
	p := mustNew(t, Options{MaxWorkers: 2, ErrorThreshold: threshold})

	for i := 0; i < threshold+1; i++ {
		err := p.Submit(func() (any, error) {
			return nil, fmt.Errorf("boom %d", i)
		}, fmt.Sprintf("job-%d", i))
		// Submissions after cancellation starts are silently dropped
		// (nil error), which is fine -- we only need threshold+1 attempts.
		_ = err
	}

	closeErr := p.Close(false)
	joinErr := p.Join()

	var exceeded *ExceedsErrorThreshold
	found := errors.As(closeErr, &exceeded) || errors.As(joinErr, &exceeded)
	require.True(t, found, "expected an ExceedsErrorThreshold error from Close or Join")
	assert.Len(t, exceeded.Errors, threshold+1)
	assert.True(t, p.IsFinished())
}

func TestErrorHandlerSwallowsRecoverableErrors(t *testing.T) {
	p := mustNew(t, Options{
		MaxWorkers:     2,
		ErrorThreshold: 0,
		ErrorHandler: func(err error, id string) bool {
			return true // always swallow
		},
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func() (any, error) {
			return nil, fmt.Errorf("recoverable")
		}, "job"))
	}

	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	assert.Equal(t, 0, p.ErrorCount())
}

func TestFatalErrorCancelsImmediately(t *testing.T) {
	p := mustNew(t, Options{MaxWorkers: 2, ErrorThreshold: 100})

	require.NoError(t, p.Submit(func() (any, error) {
		return nil, &FatalError{Err: errors.New("out of memory")}
	}, "fatal-job"))

	// Give the worker time to process and cancel.
	time.Sleep(50 * time.Millisecond)

	closeErr := p.Close(false)
	joinErr := p.Join()

	var fatal *FatalError
	found := errors.As(closeErr, &fatal) || errors.As(joinErr, &fatal)
	assert.True(t, found, "expected the fatal error to propagate unchanged")
}

func TestResultsForwarded(t *testing.T) {
	results := make(chan any, 10)
	p := mustNew(t, Options{MaxWorkers: 2, ErrorThreshold: 0, Results: results})

	for i := 0; i < 5; i++ {
		n := i
		require.NoError(t, p.Submit(func() (any, error) {
			return n * n, nil
		}, "job"))
	}

	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	close(results)

	var sum int
	for r := range results {
		sum += r.(int)
	}
	assert.Equal(t, 0+1+4+9+16, sum)
}

func TestOnCloseHookRunsPerWorker(t *testing.T) {
	var hookCalls int64
	p := mustNew(t, Options{
		MaxWorkers:     3,
		ErrorThreshold: 0,
		OnCloseHook:    func() { atomic.AddInt64(&hookCalls, 1) },
	})

	for i := 0; i < 30; i++ {
		require.NoError(t, p.Submit(func() (any, error) { return nil, nil }, "job"))
	}

	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	assert.GreaterOrEqual(t, atomic.LoadInt64(&hookCalls), int64(1))
}

func TestSubmitRejectedBeforeStart(t *testing.T) {
	p, err := New(Options{MaxWorkers: 1})
	require.NoError(t, err)
	err = p.Submit(func() (any, error) { return nil, nil }, "job")
	assert.Error(t, err)
}

func TestSubmitRejectedAfterClose(t *testing.T) {
	p := mustNew(t, Options{MaxWorkers: 1})
	require.NoError(t, p.Close(false))
	require.NoError(t, p.Join())
	err := p.Submit(func() (any, error) { return nil, nil }, "job")
	assert.Error(t, err)
}
