// Package client wraps downstream HTTP calls with span creation, trace
// context injection, a bounded timeout and a normalized error taxonomy.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/isogram/distributed-tracing-demo/logging"
	"github.com/isogram/distributed-tracing-demo/tracing"
)

const defaultTimeout = 10 * time.Second

// Config holds downstream client configuration.
type Config struct {
	// BaseURL is the downstream service base URL, e.g. "http://service-a:8080".
	BaseURL string

	// Timeout bounds each call. Defaults to 10 seconds.
	Timeout time.Duration
}

// ServiceResponse is the downstream payload shape this service consumes.
type ServiceResponse struct {
	Service   string                 `json:"service"`
	Message   string                 `json:"message"`
	TraceID   string                 `json:"trace_id"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Client issues traced calls to the downstream service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     *logging.Logger
}

// New creates a downstream client backed by the given tracing provider.
func New(cfg Config, provider *tracing.Provider, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     provider.Tracer(),
		propagator: provider.Propagator(),
		logger:     logger,
	}
}

// Call issues a GET to the downstream endpoint with the correlation id and
// the current trace context injected into the outgoing headers. Failures are
// normalized: a non-2xx response becomes a *DownstreamError carrying the
// status and body, a transport failure becomes a *DownstreamUnavailableError.
// Both are recorded on the call span and logged before returning.
func (c *Client) Call(ctx context.Context, correlationID, endpoint string) (*ServiceResponse, error) {
	url := c.baseURL + endpoint

	ctx, span := c.tracer.Start(ctx, "call_service_a",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("correlation.id", correlationID),
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", url),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.fail(span, correlationID, url, &DownstreamUnavailableError{Endpoint: endpoint, cause: err})
	}

	// Both correlation headers: downstream services read X-Trace-ID to
	// adopt the caller's id.
	req.Header.Set(tracing.CorrelationHeader, correlationID)
	req.Header.Set(tracing.LegacyCorrelationHeader, correlationID)
	req.Header.Set("Content-Type", "application/json")
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Info("Making request to service-a", map[string]interface{}{
		"trace_id": correlationID,
		"url":      url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(span, correlationID, url, &DownstreamUnavailableError{Endpoint: endpoint, cause: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, correlationID, url, &DownstreamUnavailableError{Endpoint: endpoint, cause: err})
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(span, correlationID, url, &DownstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		})
	}

	var out ServiceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.fail(span, correlationID, url, &DownstreamError{
			StatusCode: resp.StatusCode,
			Body:       "invalid JSON response",
		})
	}

	c.logger.Info("Received response from service-a", map[string]interface{}{
		"trace_id":         correlationID,
		"status_code":      resp.StatusCode,
		"response_service": out.Service,
	})

	return &out, nil
}

// fail records the normalized error on the span and logs it, including the
// underlying cause when there is one. Only the normalized error crosses the
// package boundary.
func (c *Client) fail(span trace.Span, correlationID, url string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	fields := map[string]interface{}{
		"trace_id": correlationID,
		"url":      url,
		"error":    err.Error(),
	}
	var ue *DownstreamUnavailableError
	if errors.As(err, &ue) && ue.cause != nil {
		fields["cause"] = ue.cause.Error()
	}
	var de *DownstreamError
	if errors.As(err, &de) {
		fields["status_code"] = de.StatusCode
	}

	c.logger.Error("Request to service-a failed", fields)
	return err
}
