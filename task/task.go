// Package task runs long computations on a background goroutine and lets
// the caller watch progress, cancel, and collect the result.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type State int32

const (
	Ready State = iota
	Working
	Complete
	Canceled
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Working:
		return "working"
	case Complete:
		return "complete"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Reporter is handed to the work function to publish (done, total) units.
type Reporter func(done, total int)

// Func is the unit of work run by a Task.
type Func[T any] func(ctx context.Context, report Reporter) (T, error)

// Progress is a snapshot of reported work units.
type Progress struct {
	Done, Total int
}

// Fraction is Done/Total, or 0 while Total is unknown.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32

	mu       sync.Mutex
	progress Progress
	result   T
	err      error
}

// Start runs fn on a new goroutine. Canceling ctx or calling Cancel asks fn
// to stop through its context.
func Start[T any](ctx context.Context, fn Func[T]) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.run(ctx, fn)
	}()
	return t
}

// RunSync runs fn on the calling goroutine.
func RunSync[T any](ctx context.Context, fn Func[T]) (T, error) {
	t := &Task[T]{cancel: func() {}, done: make(chan struct{})}
	t.run(ctx, fn)
	close(t.done)
	return t.result, t.err
}

func (t *Task[T]) run(ctx context.Context, fn Func[T]) {
	t.state.Store(int32(Working))
	res, err := fn(ctx, t.report)

	t.mu.Lock()
	t.result, t.err = res, err
	t.mu.Unlock()

	switch {
	case err == nil:
		t.state.Store(int32(Complete))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		t.state.Store(int32(Canceled))
	default:
		t.state.Store(int32(Failed))
	}
}

func (t *Task[T]) report(done, total int) {
	t.mu.Lock()
	t.progress = Progress{Done: done, Total: total}
	t.mu.Unlock()
}

// Wait blocks until the work function returns.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

func (t *Task[T]) Done() <-chan struct{} { return t.done }

func (t *Task[T]) Cancel() { t.cancel() }

func (t *Task[T]) State() State { return State(t.state.Load()) }

func (t *Task[T]) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}
