package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	verrors "github.com/vango-dev/vloop/internal/errors"
	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vloop").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and render durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vloop",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records runtime, renderer and host activity as Prometheus
// metrics. It implements reactive.Observer and vdom.RenderObserver.
//
// Collectors are registered once per Metrics; create one per registry.
type Metrics struct {
	flushesTotal   prometheus.Counter
	flushPasses    prometheus.Counter
	flushDuration  prometheus.Histogram
	jobsTotal      prometheus.Counter
	jobsFailed     prometheus.Counter
	jobsDropped    prometheus.Counter
	jobPanics      *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderFailures *prometheus.CounterVec
	hostOps        *prometheus.CounterVec
	framesSent     prometheus.Counter
	activeSessions prometheus.Gauge
	errorsTotal    *prometheus.CounterVec
}

var (
	_ reactive.Observer   = (*Metrics)(nil)
	_ vdom.RenderObserver = (*Metrics)(nil)
)

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - vloop_flushes_total: checkpoints that ran at least one job
//   - vloop_flush_passes_total: scheduler passes over the queues
//   - vloop_flush_duration_seconds: checkpoint duration
//   - vloop_jobs_total / vloop_jobs_failed_total / vloop_jobs_dropped_total
//   - vloop_job_panics_total: panicking jobs by job name
//   - vloop_render_duration_seconds: component render time by component
//   - vloop_render_failures_total: failed renders by component
//   - vloop_host_ops_total: host operations by kind
//   - vloop_frames_sent_total: patch frames written to clients
//   - vloop_active_sessions: connected clients
//   - vloop_errors_total: reported errors by code
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Metrics{
		flushesTotal: counter("flushes_total", "Total number of flush checkpoints that ran jobs"),
		flushPasses:  counter("flush_passes_total", "Total number of scheduler passes"),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush checkpoint duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		jobsTotal:   counter("jobs_total", "Total number of scheduled jobs run"),
		jobsFailed:  counter("jobs_failed_total", "Total number of scheduled jobs that panicked"),
		jobsDropped: counter("jobs_dropped_total", "Total number of jobs dropped at the flush limit"),
		jobPanics:   counterVec("job_panics_total", "Panicking jobs by job name", "job"),
		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),
		renderFailures: counterVec("render_failures_total", "Failed component renders", "component"),
		hostOps:        counterVec("host_ops_total", "Host operations by kind", "op"),
		framesSent:     counter("frames_sent_total", "Total number of patch frames sent to clients"),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected clients",
			ConstLabels: config.ConstLabels,
		}),
		errorsTotal: counterVec("errors_total", "Reported errors by code", "code"),
	}
}

// OnFlush implements reactive.Observer.
func (m *Metrics) OnFlush(stats reactive.FlushStats) {
	m.flushesTotal.Inc()
	m.flushPasses.Add(float64(stats.Passes))
	m.flushDuration.Observe(stats.Duration.Seconds())
	m.jobsTotal.Add(float64(stats.Jobs))
	m.jobsFailed.Add(float64(stats.Failed))
	if stats.Dropped > 0 {
		m.jobsDropped.Add(float64(stats.Dropped))
		m.errorsTotal.WithLabelValues("E202").Inc()
	}
}

// OnJobPanic implements reactive.Observer.
func (m *Metrics) OnJobPanic(job string, err error) {
	m.jobPanics.WithLabelValues(job).Inc()
	m.RecordError(err)
}

// OnRender implements vdom.RenderObserver.
func (m *Metrics) OnRender(component string, d time.Duration, err error) {
	m.renderDuration.WithLabelValues(component).Observe(d.Seconds())
	if err != nil {
		m.renderFailures.WithLabelValues(component).Inc()
		m.RecordError(err)
	}
}

// RecordOp counts one host operation.
func (m *Metrics) RecordOp(op string) {
	m.hostOps.WithLabelValues(op).Inc()
}

// RecordFrame counts one patch frame sent to a client.
func (m *Metrics) RecordFrame() {
	m.framesSent.Inc()
}

// SessionOpened and SessionClosed track connected clients.
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }
func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// RecordError counts err under its error code. Errors without one count
// as "unknown".
func (m *Metrics) RecordError(err error) {
	if err == nil {
		return
	}
	m.errorsTotal.WithLabelValues(errorCode(err)).Inc()
}

func errorCode(err error) string {
	var le *verrors.LoopError
	if errors.As(err, &le) && le.Code != "" {
		return le.Code
	}
	return "unknown"
}
