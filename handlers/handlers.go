// Package handlers implements the demo endpoint catalog: a health check,
// simulated work, and a set of synthetic success and failure scenarios for
// exercising an observability pipeline.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/isogram/distributed-tracing-demo/client"
	"github.com/isogram/distributed-tracing-demo/logging"
	"github.com/isogram/distributed-tracing-demo/tracing"
)

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	Service        string
	Logger         *logging.Logger
	Client         *client.Client
	SimulatedDelay time.Duration
}

// Response is the common payload shape for all endpoints.
type Response struct {
	Service          string      `json:"service"`
	Message          string      `json:"message,omitempty"`
	Error            string      `json:"error,omitempty"`
	TraceID          string      `json:"trace_id"`
	Timestamp        string      `json:"timestamp"`
	ProcessingTimeMS int64       `json:"processing_time_ms,omitempty"`
	Dependency       string      `json:"dependency,omitempty"`
	Scenario         string      `json:"scenario,omitempty"`
	RetryAfter       int         `json:"retry_after,omitempty"`
	Data             interface{} `json:"data,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "health_check")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "health_check"))

	h.writeJSON(w, http.StatusOK, Response{
		Service:   h.Service,
		Message:   "Service C is healthy",
		TraceID:   tracing.CorrelationIDFromContext(ctx),
		Timestamp: timestamp(),
	})
}

// Process simulates a short unit of work.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "process_request")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "process_request"))

	// 100-300ms of simulated processing.
	processing := 100*time.Millisecond + time.Duration(rand.Intn(200))*time.Millisecond
	time.Sleep(processing)

	h.writeJSON(w, http.StatusOK, Response{
		Service:          h.Service,
		Message:          "Request processed by Service C",
		TraceID:          tracing.CorrelationIDFromContext(ctx),
		Timestamp:        timestamp(),
		ProcessingTimeMS: processing.Milliseconds(),
		Data: map[string]interface{}{
			"processed_records": rand.Intn(500) + 1,
			"status":            "success",
		},
	})
}

// Data returns a static catalog, simulating a read path.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "get_data")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "get_data"))

	time.Sleep(50 * time.Millisecond)

	h.writeJSON(w, http.StatusOK, Response{
		Service:   h.Service,
		Message:   "Data retrieved from Service C",
		TraceID:   tracing.CorrelationIDFromContext(ctx),
		Timestamp: timestamp(),
		Data: map[string]interface{}{
			"products": []map[string]interface{}{
				{"id": 1, "name": "Widget A", "price": 19.99},
				{"id": 2, "name": "Widget B", "price": 29.99},
				{"id": 3, "name": "Widget C", "price": 39.99},
			},
			"total_count": 3,
			"currency":    "USD",
		},
	})
}

// CallServiceA calls the downstream service and relays its response.
func (h *Handler) CallServiceA(w http.ResponseWriter, r *http.Request) {
	h.callDownstream(w, r, "call_service_a_endpoint", "/api/process", "")
}

// CallServiceAError calls a nonexistent downstream endpoint to demonstrate
// error propagation across the service boundary.
func (h *Handler) CallServiceAError(w http.ResponseWriter, r *http.Request) {
	h.callDownstream(w, r, "call_service_a_error_scenario", "/api/nonexistent", "error_propagation_test")
}

func (h *Handler) callDownstream(w http.ResponseWriter, r *http.Request, spanName, endpoint, scenario string) {
	ctx, span := tracing.Start(r.Context(), spanName)
	defer span.End()
	span.SetAttributes(tracing.String("operation", spanName))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	resp, err := h.Client.Call(ctx, correlationID, endpoint)
	if err != nil {
		tracing.RecordError(ctx, err)
		h.Logger.Error("Failed to call Service A", map[string]interface{}{
			"trace_id": correlationID,
			"error":    err.Error(),
			"endpoint": endpoint,
		})
		h.writeJSON(w, client.HTTPStatus(err), Response{
			Service:   h.Service,
			Error:     "Failed to call Service A",
			Message:   err.Error(),
			TraceID:   correlationID,
			Timestamp: timestamp(),
			Scenario:  scenario,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Service:   h.Service,
		Message:   "Service C successfully called Service A",
		TraceID:   correlationID,
		Timestamp: timestamp(),
		Data: map[string]interface{}{
			"service_a_response": resp,
		},
	})
}

// SimulateError fails with a randomly chosen synthetic error.
func (h *Handler) SimulateError(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "simulate_error")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "simulate_error"))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	errorTypes := []string{"database_connection", "timeout", "validation_failed"}
	errorType := errorTypes[rand.Intn(len(errorTypes))]
	err := fmt.Errorf("simulated %s error in Service C", errorType)

	tracing.RecordError(ctx, err)
	h.Logger.Error("Simulated error occurred", map[string]interface{}{
		"trace_id":   correlationID,
		"error_type": errorType,
		"error":      err.Error(),
	})

	h.writeJSON(w, http.StatusInternalServerError, Response{
		Service:   h.Service,
		Error:     errorType,
		Message:   err.Error(),
		TraceID:   correlationID,
		Timestamp: timestamp(),
	})
}

// SimulateTimeout blocks for the configured delay, then fails with a
// timeout error. The delay is demo-only and kept short by default.
func (h *Handler) SimulateTimeout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "simulate_timeout")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "simulate_timeout"))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	time.Sleep(h.SimulatedDelay)

	err := fmt.Errorf("operation timed out after %s", h.SimulatedDelay)
	tracing.RecordError(ctx, err)
	h.Logger.Error("Timeout error occurred", map[string]interface{}{
		"trace_id":         correlationID,
		"timeout_duration": h.SimulatedDelay.Seconds(),
		"error":            err.Error(),
	})

	h.writeJSON(w, http.StatusRequestTimeout, Response{
		Service:   h.Service,
		Error:     "timeout",
		Message:   err.Error(),
		TraceID:   correlationID,
		Timestamp: timestamp(),
	})
}

// SimulateAuthError fails with a synthetic authentication error.
func (h *Handler) SimulateAuthError(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "simulate_auth_error")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "simulate_auth_error"))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	err := errors.New("authentication failed: invalid JWT token")
	tracing.RecordError(ctx, err)
	h.Logger.Error("Authentication error occurred", map[string]interface{}{
		"trace_id":   correlationID,
		"error_type": "authentication_failed",
		"error":      err.Error(),
	})

	h.writeJSON(w, http.StatusUnauthorized, Response{
		Service:   h.Service,
		Error:     "authentication_failed",
		Message:   err.Error(),
		TraceID:   correlationID,
		Timestamp: timestamp(),
	})
}

// SimulateRateLimitError fails with a synthetic rate-limiting error.
func (h *Handler) SimulateRateLimitError(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "simulate_rate_limit_error")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "simulate_rate_limit_error"))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	err := errors.New("rate limit exceeded: maximum 100 requests per minute")
	tracing.RecordError(ctx, err)
	h.Logger.Error("Rate limit error occurred", map[string]interface{}{
		"trace_id":         correlationID,
		"error_type":       "rate_limit_exceeded",
		"error":            err.Error(),
		"current_requests": 150,
		"limit":            100,
	})

	h.writeJSON(w, http.StatusTooManyRequests, Response{
		Service:    h.Service,
		Error:      "rate_limit_exceeded",
		Message:    err.Error(),
		TraceID:    correlationID,
		Timestamp:  timestamp(),
		RetryAfter: 60,
	})
}

// SimulateDependencyError fails with a synthetic external-dependency error.
func (h *Handler) SimulateDependencyError(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.Start(r.Context(), "simulate_dependency_error")
	defer span.End()
	span.SetAttributes(tracing.String("operation", "simulate_dependency_error"))

	correlationID := tracing.CorrelationIDFromContext(ctx)

	dependency := "external-payment-api"
	err := fmt.Errorf("external dependency %q is unavailable", dependency)
	tracing.RecordError(ctx, err)
	h.Logger.Error("External dependency error occurred", map[string]interface{}{
		"trace_id":   correlationID,
		"error_type": "dependency_unavailable",
		"dependency": dependency,
		"error":      err.Error(),
	})

	h.writeJSON(w, http.StatusServiceUnavailable, Response{
		Service:    h.Service,
		Error:      "dependency_unavailable",
		Message:    err.Error(),
		TraceID:    correlationID,
		Timestamp:  timestamp(),
		Dependency: dependency,
	})
}
