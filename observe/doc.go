// Package observe provides observability primitives for guidelinely calls.
//
// It is a pure instrumentation library: no calculation, no transport, no I/O
// beyond exporter setup. The calc package wraps each calculation with a
// Middleware; the root client builds the Observer from configuration.
package observe
