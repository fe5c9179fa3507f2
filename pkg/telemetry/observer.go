package telemetry

import (
	"time"

	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// Observer is the union of the runtime and renderer observer hooks.
type Observer interface {
	reactive.Observer
	vdom.RenderObserver
}

// Multi fans every event out to each observer in order. Nil entries are
// skipped.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multi []Observer

func (m multi) OnFlush(stats reactive.FlushStats) {
	for _, o := range m {
		o.OnFlush(stats)
	}
}

func (m multi) OnJobPanic(job string, err error) {
	for _, o := range m {
		o.OnJobPanic(job, err)
	}
}

func (m multi) OnRender(component string, d time.Duration, err error) {
	for _, o := range m {
		o.OnRender(component, d, err)
	}
}
