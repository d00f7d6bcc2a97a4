package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

// sanitizingCarrier wraps a TextMapCarrier and cleans the traceparent value
// on read, so the standard codec always sees at most one entry.
type sanitizingCarrier struct {
	propagation.TextMapCarrier
}

func (c sanitizingCarrier) Get(key string) string {
	value := c.TextMapCarrier.Get(key)
	if strings.EqualFold(key, TraceParentHeader) {
		return SanitizeTraceParent(value)
	}
	return value
}

// cleanTraceContext is the standard W3C trace-context codec with a sanitize
// step applied before decoding. It is a composition around
// propagation.TraceContext, not a behavioral override: encoding is delegated
// untouched, and decoding delegates after repairing the carrier view.
type cleanTraceContext struct {
	inner propagation.TraceContext
}

func (p cleanTraceContext) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	p.inner.Inject(ctx, carrier)
}

func (p cleanTraceContext) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return p.inner.Extract(ctx, sanitizingCarrier{carrier})
}

func (p cleanTraceContext) Fields() []string {
	return p.inner.Fields()
}

// NewPropagator returns the composite propagator used service-wide: the
// sanitizing trace-context codec followed by W3C baggage. A structurally
// invalid or absent traceparent leaves the context untouched, so the next
// span started from it becomes a root span rather than failing the request.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		cleanTraceContext{},
		propagation.Baggage{},
	)
}
