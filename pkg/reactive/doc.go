// Package reactive implements dependency tracking, effects, cached derived
// values and a batching job scheduler.
//
// All state lives in a Runtime. Reads made through an observed Object, a
// Signal or a Computed while an Effect runs subscribe that Effect; writes
// notify the subscribers. Effects created with WithScheduler hand the
// notification to a callback, typically one that enqueues a Job. Queued jobs
// run when the outermost Batch returns, deduplicated, in enqueue order.
//
//	rt := reactive.NewRuntime()
//	state := reactive.MustObserve(rt, &State{Count: 1})
//	reactive.NewEffect(rt, func() {
//	    fmt.Println("count is", state.Get("Count"))
//	})
//	state.Set("Count", 2) // prints "count is 2"
//
// A Runtime is single-goroutine. Use a Loop to drive it from a dedicated
// goroutine and post work to it from others.
package reactive
