package client

import (
	"errors"
	"fmt"
	"net/http"
)

// DownstreamError reports a non-2xx response from the downstream service.
type DownstreamError struct {
	StatusCode int
	Body       string
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream returned status %d", e.StatusCode)
}

// HTTPStatus returns the status this service reports when the downstream
// answered with an error.
func (e *DownstreamError) HTTPStatus() int {
	return http.StatusBadGateway
}

// DownstreamUnavailableError reports a network-level failure (connect,
// timeout, DNS) talking to the downstream service. The underlying transport
// error is kept out of the message so it never leaks into responses; it is
// logged at the call site instead.
type DownstreamUnavailableError struct {
	Endpoint string
	cause    error
}

func (e *DownstreamUnavailableError) Error() string {
	return "downstream unavailable: " + e.Endpoint
}

// HTTPStatus returns the status this service reports when the downstream
// could not be reached.
func (e *DownstreamUnavailableError) HTTPStatus() int {
	return http.StatusServiceUnavailable
}

// HTTPStatus maps a call error to the status code this service responds
// with. Anything outside the downstream taxonomy is an internal error.
func HTTPStatus(err error) int {
	var de *DownstreamError
	if errors.As(err, &de) {
		return de.HTTPStatus()
	}
	var ue *DownstreamUnavailableError
	if errors.As(err, &ue) {
		return ue.HTTPStatus()
	}
	return http.StatusInternalServerError
}
