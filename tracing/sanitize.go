package tracing

import (
	"net/http"
	"strings"
)

// TraceParentHeader is the W3C trace-context header name.
const TraceParentHeader = "traceparent"

// SanitizeTraceParent reduces a traceparent value that contains a
// comma-separated list of entries to its first entry, with surrounding
// whitespace stripped. Some proxies and load balancers join duplicated
// propagation headers into one value, which corrupts context decoding if
// not repaired first. Cleaning an already-clean value is a no-op.
func SanitizeTraceParent(value string) string {
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}

// SanitizeHeaders repairs the traceparent header in place, collapsing
// repeated or comma-joined values to a single clean entry. All other
// headers pass through untouched, keeping their casing and multiplicity.
func SanitizeHeaders(h http.Header) {
	values := h.Values(TraceParentHeader)
	if len(values) == 0 {
		return
	}
	h.Set(TraceParentHeader, SanitizeTraceParent(values[0]))
}
