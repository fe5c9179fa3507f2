package reactive

// Computed is a cached derived value.
//
// It is pull-based and push-invalidated: a change upstream only marks the
// cache dirty and notifies the Computed's own readers; the getter runs again
// on the next Get.
type Computed[T any] struct {
	rt     *Runtime
	getter func() T
	effect *Effect

	// dep holds the readers of this Computed.
	dep *Dep

	value T
	dirty bool
}

// NewComputed creates a Computed around getter. The getter does not run
// until the first Get.
func NewComputed[T any](rt *Runtime, getter func() T) *Computed[T] {
	c := &Computed[T]{
		rt:     rt,
		getter: getter,
		dep:    newDep(),
		dirty:  true,
	}
	c.effect = NewEffect(rt, func() {
		c.value = c.getter()
	}, Lazy(), WithScheduler(func(*Effect) {
		c.invalidate()
	}), Named("computed"))
	c.effect.computed = c
	return c
}

// invalidate marks the cache dirty and notifies readers once per change.
func (c *Computed[T]) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.rt.trigger(c.dep)
}

// Get returns the cached value, recomputing it if a source changed since the
// last read. The active subscriber, if any, becomes a reader.
func (c *Computed[T]) Get() T {
	c.rt.track(c.dep)
	if c.dirty {
		c.effect.Run()
		c.dirty = false
	}
	return c.value
}

// Peek returns the value like Get without subscribing the active effect.
func (c *Computed[T]) Peek() T {
	var v T
	c.rt.Untracked(func() {
		v = c.Get()
	})
	return v
}

// Dirty reports whether the next Get will run the getter.
func (c *Computed[T]) Dirty() bool {
	return c.dirty
}

// Readers returns the number of subscribers reading this Computed.
func (c *Computed[T]) Readers() int {
	return c.dep.Len()
}

// Stop detaches the Computed from its sources. The next read computes once
// more, untracked, and that value is kept from then on.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
	c.dirty = true
}
