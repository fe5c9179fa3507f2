package reactive

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultFlushLimit is the maximum number of flush passes per checkpoint.
// A job graph that keeps re-enqueueing itself past this limit is cut off.
const DefaultFlushLimit = 100

// Observer receives runtime events. Implementations must not call back
// into the Runtime.
type Observer interface {
	// OnFlush is called once per checkpoint that ran at least one job.
	OnFlush(stats FlushStats)

	// OnJobPanic is called when a scheduled job panics.
	OnJobPanic(job string, err error)
}

// FlushStats describes a completed flush checkpoint.
type FlushStats struct {
	Start    time.Time
	Duration time.Duration
	Passes   int
	Jobs     int
	Failed   int
	Dropped  int
}

// Runtime holds all mutable reactive state for one update loop: the
// currently running subscriber, the dependency registry, the wrapper cache
// and the scheduler queue.
//
// A Runtime is not safe for concurrent use. Drive it from a single
// goroutine, or post work to it through a Loop.
type Runtime struct {
	id uint64

	logger   *slog.Logger
	observer Observer

	// active is the subscriber whose reads are being tracked.
	active *Effect

	// scope receives effects and observed objects created while it is set.
	scope *Scope

	registry *Registry
	wrappers map[any]*Object
	sched    *Scheduler

	// depth counts nested Batch calls. The queue flushes when it returns to 0.
	depth int
}

var runtimeIDs atomic.Uint64

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithObserver installs an Observer for flush and job events.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithFlushLimit overrides DefaultFlushLimit. Values below 1 are ignored.
func WithFlushLimit(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.sched.limit = n
		}
	}
}

// NewRuntime creates an empty runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		id:       runtimeIDs.Add(1),
		logger:   slog.Default().With("component", "reactive"),
		registry: newRegistry(),
		wrappers: make(map[any]*Object),
	}
	rt.sched = newScheduler(rt)
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Scheduler returns the runtime's job scheduler.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.sched
}

// Registry returns the runtime's dependency registry.
func (rt *Runtime) Registry() *Registry {
	return rt.registry
}

// Active returns the subscriber currently tracking reads, or nil.
func (rt *Runtime) Active() *Effect {
	return rt.active
}

// Reset stops nothing but forgets all state: registry entries, cached
// wrappers, queued jobs and the active subscriber. Intended for tests.
func (rt *Runtime) Reset() {
	rt.active = nil
	rt.scope = nil
	rt.registry = newRegistry()
	rt.wrappers = make(map[any]*Object)
	rt.sched.reset()
	rt.depth = 0
}

// enter makes e the active subscriber and returns a func restoring the
// previous one. Always pair with defer.
func (rt *Runtime) enter(e *Effect) (restore func()) {
	prev := rt.active
	rt.active = e
	return func() {
		rt.active = prev
	}
}

// Untracked runs fn with no active subscriber, so reads inside it do not
// create dependencies.
func (rt *Runtime) Untracked(fn func()) {
	restore := rt.enter(nil)
	defer restore()
	fn()
}

// Batch runs fn and flushes queued jobs once the outermost Batch returns.
// This is the checkpoint after which deferred work becomes visible: any
// number of writes inside fn collapse into one run per scheduled job.
//
// If fn panics the queue is left pending and the panic propagates.
func (rt *Runtime) Batch(fn func()) {
	rt.depth++
	ok := false
	defer func() {
		rt.depth--
		if ok && rt.depth == 0 {
			rt.sched.flush()
		}
	}()
	fn()
	ok = true
}

// Flush runs all pending jobs now. It is a no-op inside a running flush.
func (rt *Runtime) Flush() {
	rt.sched.flush()
}

// InBatch reports whether a Batch is currently open.
func (rt *Runtime) InBatch() bool {
	return rt.depth > 0
}

// track subscribes the active effect to dep.
func (rt *Runtime) track(d *Dep) {
	e := rt.active
	if e == nil || !e.tracking() {
		return
	}
	if d.add(e) {
		e.deps = append(e.deps, d)
	}
}

// trigger notifies every subscriber of dep. Computed-backed subscribers are
// settled first so plain effects that read them see fresh values.
func (rt *Runtime) trigger(d *Dep) {
	if d == nil || d.Len() == 0 {
		return
	}
	subs := d.snapshot()
	for _, e := range subs {
		if e.computed != nil {
			rt.notify(e)
		}
	}
	for _, e := range subs {
		if e.computed == nil {
			rt.notify(e)
		}
	}
}

func (rt *Runtime) notify(e *Effect) {
	if e.stopped {
		return
	}
	// An effect writing to its own dependency would otherwise loop.
	if e == rt.active && !e.allowRecurse {
		return
	}
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}
