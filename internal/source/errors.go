package source

import "fmt"

// RequestFailedError reports a non-2xx answer from a data endpoint.
type RequestFailedError struct {
	StatusCode int
	Reason     string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("Request failed: %d %s", e.StatusCode, e.Reason)
}

// TransportError reports a request that produced no usable response:
// connection failures, truncated bodies and undecodable payloads.
type TransportError struct {
	Message string
}

func (e *TransportError) Error() string {
	return e.Message
}
