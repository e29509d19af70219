package secret

import "errors"

var (
	// ErrMissingEnv is returned when ${VAR} names an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variables")

	// ErrUnknownProvider is returned for a reference to an unregistered provider.
	ErrUnknownProvider = errors.New("secret: provider not registered")

	// ErrNotFound is returned by a provider that has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmpty is returned in strict mode when a provider yields "".
	ErrEmpty = errors.New("secret: empty value")
)
