package reactive

import (
	"reflect"
	"testing"
)

func TestScopeDisposeStopsEffects(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 0)
	scope := NewScope(rt, nil)

	runs := 0
	scope.Run(func() {
		NewEffect(rt, func() { _ = s.Get(); runs++ })
	})
	if scope.Effects() != 1 {
		t.Fatalf("Effects() = %d, want 1", scope.Effects())
	}
	if rt.CurrentScope() != nil {
		t.Error("Run did not restore the previous scope")
	}

	scope.Dispose()
	s.Set(1)
	if runs != 1 {
		t.Errorf("runs = %d after dispose, want 1", runs)
	}
	if !scope.Disposed() {
		t.Error("Disposed() = false")
	}
}

func TestScopeDisposeOrder(t *testing.T) {
	rt := NewRuntime()
	root := NewScope(rt, nil)
	a := NewScope(rt, root)
	b := NewScope(rt, root)

	var order []string
	root.OnCleanup(func() { order = append(order, "root1") })
	root.OnCleanup(func() { order = append(order, "root2") })
	a.OnCleanup(func() { order = append(order, "a") })
	b.OnCleanup(func() { order = append(order, "b") })

	root.Dispose()
	root.Dispose()

	want := []string{"b", "a", "root2", "root1"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestScopeChildDisposeDetaches(t *testing.T) {
	rt := NewRuntime()
	root := NewScope(rt, nil)
	child := NewScope(rt, root)

	calls := 0
	child.OnCleanup(func() { calls++ })
	child.Dispose()
	root.Dispose()

	if calls != 1 {
		t.Errorf("child cleanup ran %d times, want 1", calls)
	}
	if child.Parent() != root {
		t.Error("Parent() changed on dispose")
	}
}

func TestScopeDisposeKeepsSharedObjects(t *testing.T) {
	rt := NewRuntime()
	scope := NewScope(rt, nil)
	x := &counter{}

	var o *Object
	scope.Run(func() {
		o = MustObserve(rt, x)
		NewEffect(rt, func() { _ = o.Get("A") })
	})

	seen := 0
	NewEffect(rt, func() { seen = GetAs[int](o, "A") })
	if got := rt.Registry().Lookup(x, "A").Len(); got != 2 {
		t.Fatalf("subscribers = %d, want 2", got)
	}

	scope.Dispose()
	if got := rt.Registry().Lookup(x, "A").Len(); got != 1 {
		t.Errorf("subscribers = %d after dispose, want 1", got)
	}
	if MustObserve(rt, x) != o {
		t.Error("wrapper dropped by scope disposal")
	}

	o.Set("A", 5)
	if seen != 5 {
		t.Errorf("outside effect saw %d, want 5", seen)
	}

	// The last subscriber leaving prunes the entry.
	scope2 := NewScope(rt, nil)
	scope2.Run(func() { NewEffect(rt, func() { _ = o.Get("B") }) })
	scope2.Dispose()
	if rt.Registry().Lookup(x, "B") != nil {
		t.Error("empty entry for B survived disposal")
	}
}

func TestOnCleanupAfterDisposeRunsNow(t *testing.T) {
	rt := NewRuntime()
	scope := NewScope(rt, nil)
	scope.Dispose()

	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup on disposed scope should run immediately")
	}
}
