package calc

import (
	"errors"
	"fmt"
)

// Sentinel errors for calculation calls. The typed errors below match them
// with errors.Is.
var (
	ErrValidation = errors.New("calc: invalid request")
	ErrRemote     = errors.New("calc: remote service error")
	ErrTimeout    = errors.New("calc: request timed out")
	ErrConnection = errors.New("calc: connection failed")
	ErrNilAdapter = errors.New("calc: adapter is nil")
)

// ValidationError reports caller input that violates a local invariant.
// It is returned before any cache or network activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("calc: invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RemoteFault is a non-success response from the remote service. StatusCode
// and Message are passed through unchanged.
type RemoteFault struct {
	StatusCode int
	Message    string
}

func (e *RemoteFault) Error() string {
	return fmt.Sprintf("[%d] %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrRemote.
func (e *RemoteFault) Is(target error) bool { return target == ErrRemote }

// TimeoutFault reports that the remote call did not finish within the
// configured window.
type TimeoutFault struct {
	Err error
}

func (e *TimeoutFault) Error() string {
	if e.Err == nil {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %v", e.Err)
}

func (e *TimeoutFault) Unwrap() error { return e.Err }

// Is reports whether target is ErrTimeout.
func (e *TimeoutFault) Is(target error) bool { return target == ErrTimeout }

// ConnectionFault reports a transport failure that is not a timeout.
type ConnectionFault struct {
	Err error
}

func (e *ConnectionFault) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionFault) Unwrap() error { return e.Err }

// Is reports whether target is ErrConnection.
func (e *ConnectionFault) Is(target error) bool { return target == ErrConnection }

// StatusCode returns the status of a RemoteFault in err's chain, or 0.
func StatusCode(err error) int {
	var fault *RemoteFault
	if errors.As(err, &fault) {
		return fault.StatusCode
	}
	return 0
}
