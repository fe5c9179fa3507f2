package reactive

import "testing"

func TestEffectRunsOnCreate(t *testing.T) {
	rt := NewRuntime()
	ran := false
	NewEffect(rt, func() { ran = true })
	if !ran {
		t.Error("effect should run immediately on creation")
	}
}

func TestLazyEffectWaitsForRun(t *testing.T) {
	rt := NewRuntime()
	runs := 0
	e := NewEffect(rt, func() { runs++ }, Lazy())
	if runs != 0 {
		t.Fatalf("lazy effect ran on creation")
	}
	e.Run()
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestEffectRerunsSynchronouslyWithoutScheduler(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{A: 1})

	var seen []int
	NewEffect(rt, func() {
		seen = append(seen, GetAs[int](o, "A"))
	})
	o.Set("A", 2)
	o.Set("A", 3)

	if len(seen) != 3 || seen[2] != 3 {
		t.Errorf("seen = %v, want [1 2 3]", seen)
	}
}

func TestEffectSchedulerReplacesRerun(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	runs := 0
	notified := 0
	NewEffect(rt, func() {
		_ = o.Get("A")
		runs++
	}, WithScheduler(func(*Effect) { notified++ }))

	o.Set("A", 1)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}
}

func TestNestedEffectsRestoreActive(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	var outer *Effect
	var activeAfterInner *Effect
	outerRuns, innerRuns := 0, 0

	outer = NewEffect(rt, func() {
		outerRuns++
		NewEffect(rt, func() {
			innerRuns++
			_ = o.Get("A")
		})
		activeAfterInner = rt.Active()
		_ = o.Get("B")
	})

	if activeAfterInner != outer {
		t.Errorf("active after inner run = %v, want outer", activeAfterInner)
	}
	if rt.Active() != nil {
		t.Errorf("active after outer run = %v, want nil", rt.Active())
	}

	// B was read by the outer effect after the inner one finished.
	o.Set("B", 1)
	if outerRuns != 2 {
		t.Errorf("outerRuns = %d, want 2", outerRuns)
	}

	// A belongs to the inner effects only.
	before := outerRuns
	o.Set("A", 1)
	if outerRuns != before {
		t.Errorf("writing A re-ran the outer effect")
	}
	if innerRuns < 3 {
		t.Errorf("innerRuns = %d, want at least 3", innerRuns)
	}
}

func TestEffectPanicRestoresActive(t *testing.T) {
	rt := NewRuntime()
	func() {
		defer func() { _ = recover() }()
		NewEffect(rt, func() { panic("boom") })
	}()
	if rt.Active() != nil {
		t.Errorf("active after panic = %v, want nil", rt.Active())
	}
}

func TestEffectStopUnsubscribes(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	runs := 0
	stops := 0
	e := NewEffect(rt, func() {
		_ = o.Get("A")
		_ = o.Get("B")
		runs++
	}, OnStop(func() { stops++ }))

	if e.DepCount() != 2 {
		t.Fatalf("DepCount() = %d, want 2", e.DepCount())
	}
	if rt.Registry().DepCount() != 2 {
		t.Fatalf("Registry().DepCount() = %d, want 2", rt.Registry().DepCount())
	}

	e.Stop()
	e.Stop()

	if !e.Stopped() {
		t.Error("Stopped() = false")
	}
	if stops != 1 {
		t.Errorf("OnStop ran %d times, want 1", stops)
	}
	if rt.Registry().Len() != 0 {
		t.Errorf("Registry().Len() = %d, want 0 after stop", rt.Registry().Len())
	}

	o.Set("A", 1)
	if runs != 1 {
		t.Errorf("runs = %d, want 1 after stop", runs)
	}
}

func TestStoppedEffectRunIsUntracked(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	runs := 0
	e := NewEffect(rt, func() {
		_ = o.Get("A")
		runs++
	})
	e.Stop()
	e.Run()

	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if rt.Registry().DepCount() != 0 {
		t.Errorf("stopped effect re-subscribed: DepCount() = %d", rt.Registry().DepCount())
	}
}

func TestEffectRetracksOnRun(t *testing.T) {
	type branch struct {
		UseA bool
		A, B int
	}
	rt := NewRuntime()
	o := MustObserve(rt, &branch{UseA: true})

	runs := 0
	NewEffect(rt, func() {
		runs++
		if GetAs[bool](o, "UseA") {
			_ = o.Get("A")
		} else {
			_ = o.Get("B")
		}
	})

	o.Set("UseA", false)
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}

	o.Set("A", 1)
	if runs != 2 {
		t.Errorf("stale dependency on A: runs = %d", runs)
	}
	o.Set("B", 1)
	if runs != 3 {
		t.Errorf("runs = %d, want 3", runs)
	}
	if got := rt.Registry().DepCount(); got != 2 {
		t.Errorf("Registry().DepCount() = %d, want 2 (UseA, B)", got)
	}
}

func TestEffectSelfWriteDoesNotLoop(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	runs := 0
	NewEffect(rt, func() {
		runs++
		o.Set("A", GetAs[int](o, "A")+1)
	})

	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if GetAs[int](o, "A") != 1 {
		t.Errorf("A = %v, want 1", o.Get("A"))
	}
}

func TestUntracked(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})

	runs := 0
	NewEffect(rt, func() {
		runs++
		rt.Untracked(func() { _ = o.Get("A") })
	})
	o.Set("A", 1)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestSignal(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1)

	var seen []int
	NewEffect(rt, func() { seen = append(seen, s.Get()) })

	s.Set(1)
	s.Set(2)
	s.Update(func(v int) int { return v * 10 })

	want := []int{1, 2, 20}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
	if s.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", s.Subscribers())
	}
}

func TestSignalSliceUsesDeepEqual(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, []string{"a"})

	runs := 0
	NewEffect(rt, func() { _ = s.Get(); runs++ })

	s.Set([]string{"a"})
	if runs != 1 {
		t.Errorf("equal slice notified: runs = %d", runs)
	}
	s.Set([]string{"b"})
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestSignalWithEquals(t *testing.T) {
	rt := NewRuntime()
	s := NewSignal(rt, 1).WithEquals(func(a, b int) bool { return false })

	runs := 0
	NewEffect(rt, func() { _ = s.Get(); runs++ })
	s.Set(1)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestRuntimeReset(t *testing.T) {
	rt := NewRuntime()
	o := MustObserve(rt, &counter{})
	NewEffect(rt, func() { _ = o.Get("A") })
	rt.Scheduler().Enqueue(NewJob("x", func() {}))

	rt.Reset()

	if rt.Registry().Len() != 0 {
		t.Errorf("Registry().Len() = %d after Reset", rt.Registry().Len())
	}
	if rt.Scheduler().Pending() != 0 {
		t.Errorf("Pending() = %d after Reset", rt.Scheduler().Pending())
	}
	if MustObserve(rt, o.Raw()) == o {
		t.Error("Reset should clear the wrapper cache")
	}
}
