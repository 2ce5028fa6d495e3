package api

import (
	"errors"
	"fmt"
)

// NetworkError means the request never produced an HTTP response: the
// connection failed, timed out, or the circuit breaker refused it.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response. Message is taken from the body's
// detail, message or error field when present.
type APIError struct {
	Status  int
	Method  string
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d) on %s %s: %s", e.Status, e.Method, e.Path, e.Message)
}

// SessionExpiredError is a 401 from an endpoint other than login and
// push-token registration.
type SessionExpiredError struct {
	Path string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired (401) on %s", e.Path)
}

// IsSessionExpired reports whether err (or any error in its chain) is a
// SessionExpiredError.
func IsSessionExpired(err error) bool {
	var se *SessionExpiredError
	return errors.As(err, &se)
}

// IsNetwork reports whether err (or any error in its chain) is a
// NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsClientError reports whether err is a 4xx response other than session
// expiry: the server understood and refused the request.
func IsClientError(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.Status >= 400 && ae.Status < 500
}
