package reactive

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Post after Close.
var ErrLoopClosed = errors.New("reactive: loop closed")

// Loop serializes work onto the goroutine that calls Run. Other goroutines
// hand it tasks with Post; each task runs inside a Batch, so the scheduler
// flushes once after every task.
type Loop struct {
	rt    *Runtime
	tasks chan func()
	after func()

	closeOnce sync.Once
	done      chan struct{}
}

// NewLoop creates a loop for rt with room for buffer queued tasks.
func NewLoop(rt *Runtime, buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		rt:    rt,
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Runtime returns the loop's runtime.
func (l *Loop) Runtime() *Runtime {
	return l.rt
}

// AfterTask sets fn to run on the loop goroutine after every task, once
// the task's flush has completed. It also runs after a task that panicked.
// Call it before Run.
func (l *Loop) AfterTask(fn func()) {
	l.after = fn
}

// Post queues task. It blocks while the buffer is full and fails once the
// loop is closed or ctx is done.
func (l *Loop) Post(ctx context.Context, task func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks. Run returns after the task in progress.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Run executes tasks until ctx is cancelled or Close is called. A task that
// panics is logged and does not stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case task := <-l.tasks:
			l.runTask(task)
		}
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.rt.logger.Error("loop task panicked", "panic", r)
			// Batch skips the flush when its body panics.
			l.rt.Flush()
		}
		if l.after != nil {
			l.after()
		}
	}()
	l.rt.Batch(task)
}
