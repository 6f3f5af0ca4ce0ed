package driven

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable classification of a GitHub rejection.
type ErrorCode string

const (
	CodeHookExists  ErrorCode = "hook_exists"
	CodeNotFound    ErrorCode = "not_found"
	CodeRateLimited ErrorCode = "rate_limited"
	CodeRejected    ErrorCode = "rejected"
)

// PlatformError is returned when GitHub answered with a 4xx/5xx response.
type PlatformError struct {
	Op         string
	StatusCode int
	Code       ErrorCode
	Message    string
	Err        error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: github rejected request (%d %s): %s", e.Op, e.StatusCode, e.Code, e.Message)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// TransportError is returned when no response was obtained: network failures,
// timeouts and cancelled contexts. It is not retried by the gate.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: github unreachable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HasCode reports whether err is a PlatformError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var pe *PlatformError
	return errors.As(err, &pe) && pe.Code == code
}
