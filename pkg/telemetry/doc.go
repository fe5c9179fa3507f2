// Package telemetry exports runtime and renderer activity to Prometheus and
// OpenTelemetry.
//
// Metrics and Tracer both implement reactive.Observer and
// vdom.RenderObserver. Install them with reactive.WithObserver and
// vdom.WithRenderObserver; Multi combines several:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	obs := telemetry.Multi(m, telemetry.NewTracer())
//	rt := reactive.NewRuntime(reactive.WithObserver(obs))
//	r := vdom.NewRenderer(rt, telemetry.InstrumentHost(host, m),
//	    vdom.WithRenderObserver(obs))
//
// Serve reg with promhttp.HandlerFor to expose the collectors.
package telemetry
