package reactive

// StopFunc stops a watcher.
type StopFunc func()

type watchConfig struct {
	immediate bool
	deep      bool
	sync      bool
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

// Immediate calls the callback once at creation with the zero value as old.
func Immediate() WatchOption {
	return func(c *watchConfig) { c.immediate = true }
}

// Deep calls the callback on every notification, even if the source
// returns an equal value. Observed objects returned by the source are read
// key by key so that any nested write notifies.
func Deep() WatchOption {
	return func(c *watchConfig) { c.deep = true }
}

// Sync runs the callback synchronously on notification instead of in the
// pre-flush queue.
func Sync() WatchOption {
	return func(c *watchConfig) { c.sync = true }
}

// Watch runs cb(new, old) after source's value changes. Callbacks are
// queued as pre-flush jobs, so several writes in one batch produce one call.
func Watch[T any](rt *Runtime, source func() T, cb func(newValue, oldValue T), opts ...WatchOption) StopFunc {
	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	getter := source
	if cfg.deep {
		getter = func() T {
			v := source()
			traverse(any(v), make(map[*Object]struct{}))
			return v
		}
	}

	var (
		current  T
		oldValue T
		effect   *Effect
		force    = cfg.immediate
	)
	job := NewJob("watch", func() {
		if effect.Stopped() {
			return
		}
		effect.Run()
		if force || cfg.deep || !defaultEquals(current, oldValue) {
			force = false
			prev := oldValue
			oldValue = current
			cb(current, prev)
		}
	})

	effect = NewEffect(rt, func() {
		current = getter()
	}, Lazy(), Named("watch"), WithScheduler(func(*Effect) {
		if cfg.sync {
			job.fn()
			return
		}
		rt.sched.EnqueuePre(job)
	}))

	if cfg.immediate {
		job.fn()
	} else {
		effect.Run()
		oldValue = current
	}
	return effect.Stop
}

// WatchObject deep-watches every key of o.
func WatchObject(rt *Runtime, o *Object, cb func(o *Object)) StopFunc {
	return Watch(rt, func() *Object { return o }, func(n, _ *Object) { cb(n) }, Deep())
}

// traverse reads every key of observed objects reachable from v. Nested
// struct pointers and maps are observed on the way down.
func traverse(v any, seen map[*Object]struct{}) {
	stack := []any{v}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		o, ok := top.(*Object)
		if !ok {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		for _, k := range o.Keys() {
			child := o.Get(k)
			if child == nil {
				continue
			}
			if co, err := Observe(o.rt, child); err == nil {
				stack = append(stack, co)
			}
		}
	}
}
