package resilience

import "errors"

// ErrTimeout is returned when an attempt outlives its Timeout.
var ErrTimeout = errors.New("resilience: operation timed out")
