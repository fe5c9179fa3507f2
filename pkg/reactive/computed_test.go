package reactive

import "testing"

func TestComputedIsLazy(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{A: 2})

	calls := 0
	double := NewComputed(rt, func() int {
		calls++
		return GetAs[int](o, "A") * 2
	})

	if calls != 0 {
		t.Fatalf("getter ran on creation")
	}
	if !double.Dirty() {
		t.Error("new computed should start dirty")
	}

	for i := 0; i < 5; i++ {
		if got := double.Get(); got != 4 {
			t.Errorf("Get() = %d, want 4", got)
		}
	}
	if calls != 1 {
		t.Errorf("calls after 5 reads = %d, want 1", calls)
	}

	o.Set("A", 3)
	if calls != 1 {
		t.Errorf("write recomputed eagerly: calls = %d", calls)
	}
	if !double.Dirty() {
		t.Error("write should mark the computed dirty")
	}

	if got := double.Get(); got != 6 {
		t.Errorf("Get() = %d, want 6", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestComputedNotifiesReaders(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{A: 1})
	plus := NewComputed(rt, func() int { return GetAs[int](o, "A") + 1 })

	var seen []int
	NewEffect(rt, func() { seen = append(seen, plus.Get()) })

	o.Set("A", 5)
	if len(seen) != 2 || seen[1] != 6 {
		t.Errorf("seen = %v, want [2 6]", seen)
	}
	if plus.Readers() != 1 {
		t.Errorf("Readers() = %d, want 1", plus.Readers())
	}
}

func TestComputedSettlesBeforePlainEffects(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{A: 1})
	double := NewComputed(rt, func() int { return GetAs[int](o, "A") * 2 })

	// The effect subscribes to A before the computed's own effect does, so
	// a single-pass notify would run it against a stale cache.
	var stale bool
	NewEffect(rt, func() {
		a := GetAs[int](o, "A")
		if d := double.Get(); d != a*2 {
			stale = true
		}
	})

	for i := 2; i < 6; i++ {
		o.Set("A", i)
	}
	if stale {
		t.Error("plain effect observed a stale computed value")
	}
}

func TestComputedChain(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)

	c1Calls, c2Calls := 0, 0
	c1 := NewComputed(rt, func() int { c1Calls++; return s.Get() + 1 })
	c2 := NewComputed(rt, func() int { c2Calls++; return c1.Get() * 10 })

	if got := c2.Get(); got != 20 {
		t.Errorf("c2 = %d, want 20", got)
	}
	s.Set(4)
	if !c1.Dirty() || !c2.Dirty() {
		t.Error("invalidation should reach both computeds")
	}
	if got := c2.Get(); got != 50 {
		t.Errorf("c2 = %d, want 50", got)
	}
	if c1Calls != 2 || c2Calls != 2 {
		t.Errorf("calls = (%d, %d), want (2, 2)", c1Calls, c2Calls)
	}
}

func TestComputedPeekDoesNotSubscribe(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)
	c := NewComputed(rt, func() int { return s.Get() })

	runs := 0
	NewEffect(rt, func() { _ = c.Peek(); runs++ })
	s.Set(2)

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if c.Peek() != 2 {
		t.Errorf("Peek() = %d, want 2", c.Peek())
	}
}

func TestComputedStop(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)
	calls := 0
	c := NewComputed(rt, func() int { calls++; return s.Get() })

	_ = c.Get()
	c.Stop()
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Stop, want 0", s.Subscribers())
	}

	s.Set(9)
	if got := c.Get(); got != 9 {
		t.Errorf("Get() = %d, want 9", got)
	}
	if s.Subscribers() != 0 {
		t.Error("stopped computed re-subscribed")
	}
}

func TestComputedGetterPanicKeepsDirty(t *testing.T) {
	rt := NewRuntime()
	fail := true
	c := NewComputed(rt, func() int {
		if fail {
			panic("not ready")
		}
		return 1
	})

	func() {
		defer func() { _ = recover() }()
		c.Get()
	}()
	if !c.Dirty() {
		t.Fatal("panicking getter cleared the dirty flag")
	}
	fail = false
	if got := c.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
}
