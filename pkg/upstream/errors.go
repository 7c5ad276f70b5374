package upstream

import (
	"context"
	"errors"
	"fmt"
)

// ErrUpstream matches every *FetchError via errors.Is.
var ErrUpstream = errors.New("upstream fetch failed")

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassUnexpected represents 1xx/3xx responses that were not followed.
	ErrorClassUnexpected ErrorClass = "unexpected"

	// ErrorClassTimeout represents a request that exceeded its deadline.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"
)

// FetchError describes a failed upstream request.
type FetchError struct {
	Method     string
	URL        string
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error: %s %s: %v", e.Class, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("upstream %s error: %s %s: status %d", e.Class, e.Method, e.URL, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrUpstream.
func (e *FetchError) Is(target error) bool {
	return target == ErrUpstream
}

// classifyStatus maps a non-2xx status code to an error class.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	default:
		return ErrorClassUnexpected
	}
}

// classifyErr maps a transport error to an error class.
func classifyErr(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}
