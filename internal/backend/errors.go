package backend

import (
	"errors"
	"fmt"
)

// ErrRequestFailed is the single error kind reported for any failed backend call.
var ErrRequestFailed = errors.New("backend: request failed")

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("backend: %s status %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool { return target == ErrRequestFailed }

// RequestError reports a transport or decoding failure.
type RequestError struct {
	Endpoint string
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend: %s: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }
