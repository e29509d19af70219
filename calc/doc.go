// Package calc turns caller input into canonical calculation requests and
// serves them through a persistent cache in front of the remote guideline
// service.
//
// A call runs validate → canonicalize → cache lookup → (on miss) remote
// invocation → cache write → assemble, synchronously and in that order.
// Validation failures surface before any cache or network activity. The
// cache is an optimization only: storage faults degrade to misses on read
// and to warnings on write.
//
// Parameter and context inputs are tagged unions. A parameter is either a
// bare Name or a ParameterSpec carrying a target unit; a context input is
// either Single(ctx) or Many(ctxs...). Both normalize immediately into the
// immutable Request that the Canonicalizer and the Adapter consume.
package calc
