package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vloop/pkg/reactive"
	"github.com/vango-dev/vloop/pkg/vdom"
)

// Default tracer name.
const defaultTracerName = "vloop"

// TracerConfig configures a Tracer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "vloop").
	TracerName string

	// Provider supplies the tracer. If nil, the global provider is used.
	Provider trace.TracerProvider

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// TracerOption configures NewTracer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracerOption {
	return func(c *TracerConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Tracer turns flush checkpoints and component renders into spans. The
// observer hooks report after the fact, so each span is started and ended
// with explicit timestamps.
//
// Configure the provider in main() before creating the Tracer:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	ctx    context.Context
}

var (
	_ reactive.Observer   = (*Tracer)(nil)
	_ vdom.RenderObserver = (*Tracer)(nil)
)

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.Provider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{
		tracer: tp.Tracer(config.TracerName),
		attrs:  config.Attributes,
		ctx:    context.Background(),
	}
}

// WithContext returns a copy of t whose spans are children of the span in
// ctx, such as the request that opened a session.
func (t *Tracer) WithContext(ctx context.Context) *Tracer {
	cp := *t
	cp.ctx = ctx
	return &cp
}

func (t *Tracer) span(name string, start, end time.Time, err error, attrs ...attribute.KeyValue) {
	_, span := t.tracer.Start(t.ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
		trace.WithAttributes(t.attrs...),
		trace.WithAttributes(attrs...),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

// OnFlush implements reactive.Observer.
func (t *Tracer) OnFlush(stats reactive.FlushStats) {
	t.span("vloop.flush", stats.Start, stats.Start.Add(stats.Duration), nil,
		attribute.Int("vloop.passes", stats.Passes),
		attribute.Int("vloop.jobs", stats.Jobs),
		attribute.Int("vloop.failed", stats.Failed),
		attribute.Int("vloop.dropped", stats.Dropped),
	)
}

// OnJobPanic implements reactive.Observer.
func (t *Tracer) OnJobPanic(job string, err error) {
	now := time.Now()
	t.span("vloop.job", now, now, err,
		attribute.String("vloop.job", job),
		attribute.String("vloop.error_code", errorCode(err)),
	)
}

// OnRender implements vdom.RenderObserver.
func (t *Tracer) OnRender(component string, d time.Duration, err error) {
	end := time.Now()
	attrs := []attribute.KeyValue{attribute.String("vloop.component", component)}
	if err != nil {
		attrs = append(attrs, attribute.String("vloop.error_code", errorCode(err)))
	}
	t.span("vloop.render", end.Add(-d), end, err, attrs...)
}
