package tracing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/isogram/distributed-tracing-demo/logging"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.headerWritten {
		rw.statusCode = code
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Unwrap returns the underlying ResponseWriter for compatibility with
// http.ResponseController and other wrappers.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns the HTTP middleware that binds a span and a correlation
// id to every request. Per request it: repairs malformed propagation headers,
// extracts the inbound trace context, starts a server span (a child of the
// extracted context, or a root span when none was supplied), resolves the
// correlation id, stamps both onto the span, echoes the correlation id on
// the response, and on completion records the status code and emits one
// completion log line. Panics inside handlers are recovered here, recorded
// on the active span, logged at error level and converted to a correlated
// 500 response; the span is ended exactly once on every exit path.
func (p *Provider) Middleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// First sanitize pass, before any trace-context extraction.
			// The propagator sanitizes again on decode; both passes apply
			// identical cleaning, so order does not matter.
			SanitizeHeaders(r.Header)

			ctx := r.Context()
			span := trace.SpanFromContext(ctx)
			if p.IsEnabled() {
				ctx = p.Propagator().Extract(ctx, propagation.HeaderCarrier(r.Header))
				spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
				ctx, span = p.tracer.Start(ctx, spanName,
					trace.WithSpanKind(trace.SpanKindServer),
					trace.WithAttributes(httpServerAttributes(r)...),
				)
				defer span.End()
			}

			correlationID, generated := ResolveCorrelationID(r.Header)
			if generated {
				logger.Warning("Missing correlation ID from upstream - generated fallback", map[string]interface{}{
					"trace_id": correlationID,
					"headers":  flattenHeaders(r.Header),
					"path":     r.URL.Path,
				})
			}
			ctx = WithCorrelationID(ctx, correlationID)

			span.SetAttributes(
				attribute.String("correlation.id", correlationID),
				attribute.String("http.route", r.URL.Path),
				attribute.String("service.name", p.config.ServiceName),
			)

			rw := newResponseWriter(w)
			rw.Header().Set(CorrelationHeader, correlationID)

			start := time.Now()
			// Registered after span.End, so it runs first: errors are
			// recorded before the span closes.
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					span.RecordError(err)
					span.SetStatus(codes.Error, "internal server error")
					span.SetAttributes(semconv.HTTPStatusCode(http.StatusInternalServerError))
					logger.Error("Unhandled error", map[string]interface{}{
						"trace_id": correlationID,
						"error":    fmt.Sprint(rec),
						"path":     r.URL.Path,
						"method":   r.Method,
					})
					writeInternalError(rw, p.config.ServiceName, correlationID)
				} else {
					span.SetAttributes(
						semconv.HTTPStatusCode(rw.statusCode),
						attribute.Int64("http.response.size", rw.bytesWritten),
						attribute.Float64("http.duration_ms", float64(time.Since(start).Milliseconds())),
					)
					// Set span status based on HTTP status code
					if rw.statusCode >= 500 {
						span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
					} else if rw.statusCode >= 400 {
						// Client errors are not span errors, but we note them
						span.SetStatus(codes.Unset, "")
					} else {
						span.SetStatus(codes.Ok, "")
					}
				}

				logger.Info(fmt.Sprintf("Completed %s %s", r.Method, r.URL.Path), map[string]interface{}{
					"trace_id":    correlationID,
					"status_code": rw.statusCode,
					"method":      r.Method,
					"path":        r.URL.Path,
				})
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}

func writeInternalError(rw *responseWriter, service, correlationID string) {
	if rw.headerWritten {
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(rw).Encode(map[string]interface{}{
		"service":   service,
		"error":     "Internal server error",
		"trace_id":  correlationID,
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
	})
}

// httpServerAttributes returns standard HTTP server span attributes.
func httpServerAttributes(r *http.Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.HTTPMethod(r.Method),
		semconv.HTTPURL(sanitizeURL(r)),
		semconv.HTTPScheme(scheme(r)),
		semconv.NetHostName(r.Host),
		semconv.HTTPTarget(r.URL.Path),
	}

	if userAgent := r.UserAgent(); userAgent != "" {
		attrs = append(attrs, semconv.HTTPUserAgent(userAgent))
	}

	return attrs
}

// sanitizeURL returns a URL string safe for span attributes.
func sanitizeURL(r *http.Request) string {
	u := *r.URL
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

// flattenHeaders renders the inbound header set for diagnostic logging.
func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}
