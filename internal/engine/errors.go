// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrNetworkError    = errors.New("network error")
	ErrRobotsBlocked   = errors.New("disallowed by robots.txt")
	ErrParseError      = errors.New("failed to parse content")
	ErrNotFound        = errors.New("not found")
	ErrStartup         = errors.New("startup failed")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeNetworkError  ErrorCode = "NETWORK_ERROR"
	ErrCodeRobotsBlocked ErrorCode = "ROBOTS_BLOCKED"
	ErrCodeParseError    ErrorCode = "PARSE_ERROR"
	ErrCodeStartupError  ErrorCode = "STARTUP_ERROR"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
)

// Error wraps errors with the taxonomy code and additional context
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	if sentinel, ok := sentinels[e.Code]; ok && target == sentinel {
		return true
	}
	return errors.Is(e.Underlying, target)
}

var sentinels = map[ErrorCode]error{
	ErrCodeNetworkError:  ErrNetworkError,
	ErrCodeRobotsBlocked: ErrRobotsBlocked,
	ErrCodeParseError:    ErrParseError,
	ErrCodeStartupError:  ErrStartup,
	ErrCodeNotFound:      ErrNotFound,
}

// NewError creates a new Error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}
