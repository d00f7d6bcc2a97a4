package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceFields returns log fields tying a log line to the request: the
// correlation id (as trace_id, the log-facing identifier) plus the backend
// trace and span ids when a recording span is active.
func TraceFields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})

	if id := CorrelationIDFromContext(ctx); id != "" {
		fields["trace_id"] = id
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		fields["otel_trace_id"] = sc.TraceID().String()
		fields["span_id"] = sc.SpanID().String()
	}

	return fields
}

// MergeFields merges trace fields with additional fields.
func MergeFields(ctx context.Context, additional map[string]interface{}) map[string]interface{} {
	fields := TraceFields(ctx)
	for k, v := range additional {
		fields[k] = v
	}
	return fields
}
