package network

import "fmt"

// ErrorCode represents different types of network errors.
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrCellNotFound represents a cell not found error
	ErrCellNotFound

	// ErrCellDead represents an operation attempted on a dead cell
	ErrCellDead

	// ErrNetworkFull represents population capacity exhaustion
	ErrNetworkFull

	// ErrUnreachable represents an unroutable destination
	ErrUnreachable

	// ErrInvalidInput represents a malformed caller request
	ErrInvalidInput

	// ErrInterpreterFailed represents a reasoning collaborator failure
	ErrInterpreterFailed

	// ErrDriverRunning represents a driver that is already running
	ErrDriverRunning

	// ErrDriverStopped represents a driver that is not running
	ErrDriverStopped
)

// String returns a string representation of the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrCellNotFound:
		return "cell_not_found"
	case ErrCellDead:
		return "cell_dead"
	case ErrNetworkFull:
		return "network_full"
	case ErrUnreachable:
		return "unreachable"
	case ErrInvalidInput:
		return "invalid_input"
	case ErrInterpreterFailed:
		return "interpreter_failed"
	case ErrDriverRunning:
		return "driver_running"
	case ErrDriverStopped:
		return "driver_stopped"
	default:
		return "unknown"
	}
}

// NetworkError represents an error that occurred in the simulation engine.
type NetworkError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// NewNetworkError creates a new network error.
func NewNetworkError(code ErrorCode, message string) *NetworkError {
	return &NetworkError{
		Code:    code,
		Message: message,
	}
}

// NewNetworkErrorWithCause creates a new network error with a cause.
func NewNetworkErrorWithCause(code ErrorCode, message string, cause error) *NetworkError {
	return &NetworkError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target error by code.
func (e *NetworkError) Is(target error) bool {
	if targetErr, ok := target.(*NetworkError); ok {
		return e.Code == targetErr.Code
	}
	return false
}
