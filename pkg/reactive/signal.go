package reactive

import "reflect"

// Signal is a single observed cell: the explicit counterpart of an observed
// object with one key. Reading Get subscribes the active effect; Set notifies
// subscribers when the value changes.
type Signal[T any] struct {
	rt    *Runtime
	dep   *Dep
	value T
	equal func(T, T) bool
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](rt *Runtime, initial T) *Signal[T] {
	return &Signal[T]{rt: rt, dep: newDep(), value: initial}
}

// Get returns the value and tracks the signal.
func (s *Signal[T]) Get() T {
	s.rt.track(s.dep)
	return s.value
}

// Peek returns the value without tracking.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and notifies subscribers if it differs from the
// current one.
func (s *Signal[T]) Set(value T) {
	if s.equals(s.value, value) {
		return
	}
	s.value = value
	s.rt.trigger(s.dep)
}

// Update replaces the value with fn(current).
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// WithEquals sets the equality used by Set.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Subscribers returns the number of effects reading the signal.
func (s *Signal[T]) Subscribers() int {
	return s.dep.Len()
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for comparable dynamic types and reflect.DeepEqual
// for the rest.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if reflect.TypeOf(av).Comparable() && reflect.TypeOf(bv).Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(av, bv)
}
