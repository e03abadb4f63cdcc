// Package middleware provides observability middleware for rstate bindings.
//
// Every binding evaluation runs through the middleware chain configured on
// its root with reactive.WithMiddleware. This package includes:
//   - OpenTelemetry tracing, one span per evaluation
//   - Prometheus metrics for evaluations and accepted changes
//   - Structured logging through log/slog
//
// # OpenTelemetry Middleware
//
//	root, _ := reactive.NewRoot(state,
//	    reactive.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithDispatchFilter(func(d *reactive.Dispatch) bool {
//	        return d.Kind == reactive.KindSelector
//	    }),
//	)
//
// Spans carry the root and binding IDs, the binding kind and mode, and
// whether the rerender callback was delivered. A panicking selector or
// callback still ends its span with an error status.
//
// # Prometheus Metrics
//
// The Prometheus middleware collects:
//   - rstate_evaluations_total: evaluations by kind, mode and result
//   - rstate_evaluation_duration_seconds: evaluation duration histogram
//   - rstate_changes_total: accepted changes on tracked roots
//
//	mw := middleware.Prometheus(middleware.WithNamespace("myapp"))
//	root, _ := reactive.NewRoot(state, reactive.WithMiddleware(mw))
//	middleware.Track(root)
//
// Then expose the registry:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
