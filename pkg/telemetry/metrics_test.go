package telemetry

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
	"github.com/vango-dev/vloop/pkg/vtest"
)

func newTestMetrics(t *testing.T, opts ...MetricsOption) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(append([]MetricsOption{WithRegistry(reg)}, opts...)...), reg
}

func TestMetrics_OnFlush(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.OnFlush(reactive.FlushStats{Start: time.Now(), Duration: 2 * time.Millisecond, Passes: 2, Jobs: 5, Failed: 1})
	m.OnFlush(reactive.FlushStats{Start: time.Now(), Passes: 100, Jobs: 100, Dropped: 3})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.flushesTotal))
	assert.Equal(t, 102.0, testutil.ToFloat64(m.flushPasses))
	assert.Equal(t, 105.0, testutil.ToFloat64(m.jobsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobsFailed))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.jobsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("E202")))
}

func TestMetrics_JobPanicAndRender(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.OnJobPanic("watch", verrors.New("E203"))
	m.OnJobPanic("watch", errors.New("plain"))
	m.OnRender("Counter", time.Millisecond, nil)
	m.OnRender("Counter", time.Millisecond, verrors.New("E301"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobPanics.WithLabelValues("watch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("E203")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.renderFailures.WithLabelValues("Counter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("E301")))
}

func TestMetrics_Sessions(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.RecordFrame()
	m.RecordError(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesSent))
}

func TestMetrics_NamespaceAndLabels(t *testing.T) {
	m, reg := newTestMetrics(t,
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.001, 0.01}),
	)
	m.RecordFrame()

	expected := `
# HELP app_ui_frames_sent_total Total number of patch frames sent to clients
# TYPE app_ui_frames_sent_total counter
app_ui_frames_sent_total{env="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_ui_frames_sent_total"))
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	assert.Panics(t, func() { NewMetrics(WithRegistry(reg)) })
}

func TestMetrics_WiredIntoRuntime(t *testing.T) {
	m, reg := newTestMetrics(t)
	rt := reactive.NewRuntime(reactive.WithObserver(m))
	host := vtest.NewHost()
	root := host.NewContainer()
	r := vdom.NewRenderer(rt, InstrumentHost(host, m), vdom.WithRenderObserver(m))

	count := reactive.NewSignal(rt, 0)
	view := vdom.Func("View", func(*vdom.Instance) *vdom.VNode {
		return vdom.Div(vdom.Textf("%d", count.Get()))
	})
	r.Render(vdom.C(view), root)

	rt.Batch(func() { count.Set(1) })

	assert.Equal(t, "<div>1</div>", vtest.Serialize(root))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.flushesTotal), 1.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostOps.WithLabelValues("CreateElement")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostOps.WithLabelValues("CreateText")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostOps.WithLabelValues("SetText")))

	n, err := testutil.GatherAndCount(reg, "vloop_render_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInstrumentHost_Navigator(t *testing.T) {
	m, _ := newTestMetrics(t)
	host := vtest.NewHost()

	wrapped := InstrumentHost(host, m)
	nav, ok := wrapped.(vdom.Navigator)
	require.True(t, ok)

	root := host.NewContainer()
	a := wrapped.CreateElement("a")
	b := wrapped.CreateElement("b")
	wrapped.Insert(a, root, nil)
	wrapped.Insert(b, root, nil)
	assert.Equal(t, b, nav.NextSibling(a))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.hostOps.WithLabelValues("Insert")))

	_, ok = InstrumentHost(plainHost{host}, m).(vdom.Navigator)
	assert.False(t, ok)
}

// plainHost hides the Navigator of the host it wraps.
type plainHost struct{ vdom.Host }
