package reactive

// Scope owns the effects created while it is current. Disposing a Scope
// stops its effects, runs its cleanups and disposes its child scopes,
// newest first. Observed objects are shared across scopes and are not
// released; stopping an effect prunes the registry entries it leaves empty.
//
// Scopes form a tree mirroring the component tree: each mounted component
// gets one, parented to the scope that was current at mount.
type Scope struct {
	rt       *Runtime
	parent   *Scope
	children []*Scope
	effects  []*Effect
	cleanups []func()
	disposed bool
}

// NewScope creates a scope. A nil parent makes a root scope.
func NewScope(rt *Runtime, parent *Scope) *Scope {
	s := &Scope{rt: rt, parent: parent}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// CurrentScope returns the scope new effects register with, or nil.
func (rt *Runtime) CurrentScope() *Scope {
	return rt.scope
}

// Run runs fn with s as the current scope.
func (s *Scope) Run(fn func()) {
	prev := s.rt.scope
	s.rt.scope = s
	defer func() {
		s.rt.scope = prev
	}()
	fn()
}

// Parent returns the parent scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Disposed reports whether Dispose was called.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Effects returns the number of effects owned directly by s.
func (s *Scope) Effects() int {
	return len(s.effects)
}

func (s *Scope) addEffect(e *Effect) {
	if s.disposed {
		return
	}
	s.effects = append(s.effects, e)
}

// OnCleanup registers fn to run on Dispose. On a disposed scope fn runs now.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Dispose tears the scope down. It is idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	for _, e := range s.effects {
		e.Stop()
	}
	s.effects = nil

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
