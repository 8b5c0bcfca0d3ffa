package proxy

import "fmt"

// ErrorKind separates caller mistakes from execution failures so the
// HTTP boundary can map them to 400 versus 502.
type ErrorKind string

const (
	// KindBadRequest marks errors shaped by the caller's input:
	// validation failures, session capacity, the redirect limit.
	KindBadRequest ErrorKind = "bad_request"

	// KindExecution marks failures while performing the request:
	// transport errors, timeouts, unreachable upstreams.
	KindExecution ErrorKind = "execution"
)

// RequestError is the executor's error type.
type RequestError struct {
	// Kind classifies the error for status mapping.
	Kind ErrorKind

	// Message is the human-readable description.
	Message string

	// Code is the machine-readable error code carried through to the
	// API error response.
	Code string

	// Param names the offending request field, if any.
	Param string

	// Err is the wrapped cause, if any.
	Err error
}

// Error returns the error message.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// executionError builds an execution failure.
func executionError(message string, err error) *RequestError {
	return &RequestError{Kind: KindExecution, Message: message, Err: err}
}

// RedirectLimitError is returned when a redirect chain exceeds the
// configured maximum. The chain holds every URL visited before the
// limit was hit.
type RedirectLimitError struct {
	// MaxHops is the configured redirect limit.
	MaxHops int

	// Chain lists the visited URLs in order.
	Chain []string
}

// Error returns the error message.
func (e *RedirectLimitError) Error() string {
	return fmt.Sprintf("too many redirects (max: %d)", e.MaxHops)
}
