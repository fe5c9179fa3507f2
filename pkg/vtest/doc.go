// Package vtest provides a headless host for testing renders.
//
// Host implements vdom.Host over an in-memory node tree and records every
// operation it receives, so tests can assert both on the resulting tree
// and on how many operations it took to get there.
//
// # Quick Start
//
//	func TestTodoList(t *testing.T) {
//	    rt := reactive.NewRuntime()
//	    host := vtest.NewHost()
//	    root := host.NewContainer()
//	    r := vdom.NewRenderer(rt, host)
//
//	    r.Render(vdom.Ul(vdom.Li(vdom.Key(1), "a")), root)
//	    host.Reset()
//
//	    r.Render(vdom.Ul(vdom.Li(vdom.Key(1), "a"), vdom.Li(vdom.Key(2), "b")), root)
//	    if got := host.Count(vtest.OpCreateElement); got != 1 {
//	        t.Errorf("mounts = %d, want 1", got)
//	    }
//	    vtest.ExpectSerialized(t, root, "<ul><li>a</li><li>b</li></ul>")
//	}
//
// # Moves
//
// Inserting a node that is already attached is recorded as OpMove, which is
// how the reconciler reorders siblings.
package vtest
