package reactive

import "sync/atomic"

var effectIDs atomic.Uint64

// Effect is a re-runnable computation subscribed to the values it read
// during its last run.
//
// On notification an Effect either re-runs synchronously or, when it was
// created with WithScheduler, hands itself to the scheduler callback which
// decides when to run it.
type Effect struct {
	id   uint64
	rt   *Runtime
	name string

	fn        func()
	scheduler func(*Effect)

	// computed is set when this effect drives a Computed. Such effects are
	// notified before plain ones.
	computed computedNode

	// deps are the Deps this effect is subscribed to.
	deps []*Dep

	lazy         bool
	running      bool
	stopped      bool
	allowRecurse bool
	onStop       []func()
}

// computedNode marks the Computed owning an effect.
type computedNode interface {
	invalidate()
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// Lazy skips the initial run. The caller runs the effect when ready.
func Lazy() EffectOption {
	return func(e *Effect) {
		e.lazy = true
	}
}

// WithScheduler replaces the synchronous re-run on notification with fn.
func WithScheduler(fn func(*Effect)) EffectOption {
	return func(e *Effect) {
		e.scheduler = fn
	}
}

// Named sets a name used in logs.
func Named(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// OnStop registers fn to run when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return func(e *Effect) {
		e.onStop = append(e.onStop, fn)
	}
}

// AllowRecurse lets the effect be re-notified by its own writes while it
// runs. Only useful together with WithScheduler.
func AllowRecurse() EffectOption {
	return func(e *Effect) {
		e.allowRecurse = true
	}
}

// NewEffect creates an effect around fn and, unless Lazy is given, runs it
// once to collect its dependencies. The effect is registered with the
// runtime's current Scope, if any.
func NewEffect(rt *Runtime, fn func(), opts ...EffectOption) *Effect {
	e := &Effect{
		id: effectIDs.Add(1),
		rt: rt,
		fn: fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	if rt.scope != nil {
		rt.scope.addEffect(e)
	}
	if !e.lazy {
		e.Run()
	}
	return e
}

// ID returns the effect's unique identifier.
func (e *Effect) ID() uint64 {
	return e.id
}

// Name returns the effect name set with Named.
func (e *Effect) Name() string {
	return e.name
}

// Stopped reports whether Stop was called.
func (e *Effect) Stopped() bool {
	return e.stopped
}

// DepCount returns the number of Deps the effect is subscribed to.
func (e *Effect) DepCount() int {
	return len(e.deps)
}

// tracking reports whether reads should subscribe this effect.
func (e *Effect) tracking() bool {
	return !e.stopped
}

// Run re-collects dependencies by invoking the effect function with this
// effect as the active subscriber. The previous active subscriber is
// restored afterwards, also when fn panics.
//
// A stopped effect runs fn untracked. A running effect does not re-enter.
func (e *Effect) Run() {
	if e.stopped {
		e.rt.Untracked(e.fn)
		return
	}
	if e.running {
		return
	}
	e.cleanup()

	restore := e.rt.enter(e)
	e.running = true
	defer func() {
		e.running = false
		restore()
	}()
	e.fn()
}

// Stop unsubscribes the effect from every Dep and turns later
// notifications into no-ops. Stop is idempotent.
func (e *Effect) Stop() {
	if e.stopped {
		return
	}
	e.cleanup()
	e.stopped = true
	for _, fn := range e.onStop {
		fn()
	}
	e.onStop = nil
}

// cleanup removes the effect from all Deps it subscribed to.
func (e *Effect) cleanup() {
	for _, d := range e.deps {
		d.remove(e)
	}
	e.deps = e.deps[:0]
}
