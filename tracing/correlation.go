package tracing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Correlation headers, in resolution priority order. X-Amzn-Trace-Id is
// accepted so requests arriving through an AWS-style load balancer keep
// their upstream identifier.
const (
	CorrelationHeader       = "X-Correlation-ID"
	LegacyCorrelationHeader = "X-Trace-ID"
	AmznTraceHeader         = "X-Amzn-Trace-Id"
)

type correlationKey struct{}

// ResolveCorrelationID derives the correlation id for a request from its
// headers. It prefers an explicit caller-supplied identifier and otherwise
// synthesizes a fallback id. The second return value reports whether the id
// was synthesized, so the caller can log the missing upstream id.
// It never fails and always returns a non-empty string.
func ResolveCorrelationID(h http.Header) (string, bool) {
	for _, name := range []string{CorrelationHeader, LegacyCorrelationHeader, AmznTraceHeader} {
		if v := h.Get(name); v != "" {
			return v, false
		}
	}
	return NewFallbackID(), true
}

// NewFallbackID synthesizes a correlation id of the form
// fallback-<epoch-millis>-<8 hex chars>.
func NewFallbackID() string {
	return fmt.Sprintf("fallback-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// WithCorrelationID attaches the correlation id to the context for the
// lifetime of the request.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFromContext returns the request's correlation id, or an
// empty string if none has been resolved yet.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}
