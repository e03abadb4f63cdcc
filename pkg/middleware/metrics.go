package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "rstate").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for evaluation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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
		Namespace: "rstate",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Evaluation results used as the "result" label.
const (
	ResultDelivered = "delivered"
	ResultSkipped   = "skipped"
	ResultPanic     = "panic"
)

// metrics holds the Prometheus metrics for rstate.
type metrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	changesTotal       prometheus.Counter
	trackedRoots       prometheus.Gauge
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Prometheus.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		evaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evaluations_total",
			Help:        "Total number of binding evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "mode", "result"}),

		evaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "evaluation_duration_seconds",
			Help:        "Binding evaluation duration in seconds, rerender included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind", "mode"}),

		changesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "changes_total",
			Help:        "Total number of accepted changes on tracked roots",
			ConstLabels: config.ConstLabels,
		}),

		trackedRoots: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tracked_roots",
			Help:        "Number of roots currently counted by Track",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for
// binding evaluations. Metrics are registered once per process; options
// passed after the first call are ignored.
//
// Example:
//
//	root, _ := reactive.NewRoot(state,
//	    reactive.WithMiddleware(middleware.Prometheus()),
//	)
func Prometheus(opts ...MetricsOption) reactive.Middleware {
	m := ensureMetrics(opts...)

	return reactive.MiddlewareFunc(func(d *reactive.Dispatch, next func()) {
		kind, mode := d.Kind.String(), d.Mode.String()
		start := time.Now()
		completed := false

		// Runs on panic too; the panic keeps propagating.
		defer func() {
			m.evaluationDuration.WithLabelValues(kind, mode).Observe(time.Since(start).Seconds())
			m.evaluationsTotal.WithLabelValues(kind, mode, resultOf(d, completed)).Inc()
		}()

		next()
		completed = true
	})
}

func ensureMetrics(opts ...MetricsOption) *metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	return globalMetrics
}

func resultOf(d *reactive.Dispatch, completed bool) string {
	switch {
	case !completed:
		return ResultPanic
	case d.Delivered:
		return ResultDelivered
	default:
		return ResultSkipped
	}
}

// Track counts every accepted change on root in rstate_changes_total.
// Unsubscribe the returned subscription to stop counting. The metrics are
// initialized with the given options if Prometheus has not been called.
func Track(root *reactive.Root, opts ...MetricsOption) *TrackedRoot {
	m := ensureMetrics(opts...)
	m.trackedRoots.Inc()
	return &TrackedRoot{
		sub: root.Subscribe(func(*reactive.Root) { m.changesTotal.Inc() }),
		m:   m,
	}
}

// TrackedRoot is the handle returned by Track.
type TrackedRoot struct {
	sub  *reactive.Subscription
	m    *metrics
	once sync.Once
}

// Stop stops counting changes. Calling it again is a no-op.
func (t *TrackedRoot) Stop() {
	t.once.Do(func() {
		t.sub.Unsubscribe()
		t.m.trackedRoots.Dec()
	})
}

// RecordChange records one accepted change by hand, for callers that
// observe roots through their own subscriptions.
func RecordChange() {
	globalMetricsMu.Lock()
	m := globalMetrics
	globalMetricsMu.Unlock()
	if m != nil {
		m.changesTotal.Inc()
	}
}

// Collector exposes the metrics for custom registrations and tests.
type Collector struct {
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration *prometheus.HistogramVec
	ChangesTotal       prometheus.Counter
	TrackedRoots       prometheus.Gauge
}

// GetMetrics returns the global metrics collector.
// Returns nil if neither Prometheus nor Track has been called.
func GetMetrics() *Collector {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		EvaluationsTotal:   globalMetrics.evaluationsTotal,
		EvaluationDuration: globalMetrics.evaluationDuration,
		ChangesTotal:       globalMetrics.changesTotal,
		TrackedRoots:       globalMetrics.trackedRoots,
	}
}
