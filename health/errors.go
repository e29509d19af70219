package health

import "errors"

var (
	// ErrCheckTimeout is set on results whose checker did not return in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned by Aggregator.Check for an unknown name.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrUnexpectedStatus is set when a probe answers with a status other
	// than a healthy one.
	ErrUnexpectedStatus = errors.New("health: unexpected status")
)
