package middleware

import (
	"context"
	"time"

	"github.com/vango-dev/rstate/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for rstate.
const defaultTracerName = "rstate"

// SpanName is the name of every evaluation span.
const SpanName = "rstate.evaluate"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "rstate").
	TracerName string

	// TracerProvider overrides the global tracer provider.
	TracerProvider trace.TracerProvider

	// Context is the parent context for evaluation spans.
	// Default: context.Background()
	Context context.Context

	// Filter determines which evaluations to trace.
	// If nil, all evaluations are traced.
	Filter func(d *reactive.Dispatch) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(d *reactive.Dispatch) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider instead of the global one.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithParentContext sets the context spans are started from.
func WithParentContext(ctx context.Context) OTelOption {
	return func(c *OTelConfig) {
		c.Context = ctx
	}
}

// WithDispatchFilter sets a filter function for evaluations.
func WithDispatchFilter(filter func(d *reactive.Dispatch) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(d *reactive.Dispatch) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
		Context:    context.Background(),
	}
}

// OpenTelemetry creates middleware that traces every binding evaluation.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before creating roots:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) reactive.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	return reactive.MiddlewareFunc(func(d *reactive.Dispatch, next func()) {
		if config.Filter != nil && !config.Filter(d) {
			next()
			return
		}

		attrs := []attribute.KeyValue{
			attribute.Int64("rstate.root_id", int64(d.RootID)),
			attribute.Int64("rstate.binding_id", int64(d.BindingID)),
			attribute.String("rstate.kind", d.Kind.String()),
			attribute.String("rstate.mode", d.Mode.String()),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(d)...)
		}

		_, span := config.tracer.Start(
			config.Context,
			SpanName,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)

		completed := false
		defer func() {
			if !completed {
				span.SetStatus(codes.Error, "evaluation panicked")
			}
			span.End()
		}()

		next()
		completed = true

		span.SetAttributes(attribute.Bool("rstate.delivered", d.Delivered))
		span.SetStatus(codes.Ok, "")
	})
}
