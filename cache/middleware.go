package cache

import (
	"context"
	"time"
)

// FetchFunc produces a fresh value on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// WarnFunc receives non-fatal storage faults.
type WarnFunc func(ctx context.Context, err error)

// Middleware wraps a fetch with a read-through cache.
//
// Contract:
//   - Ordering: lookup always precedes fetch; a successful fetch is written
//     before Execute returns.
//   - Errors: fetch errors are returned and never cached. Storage faults on
//     read degrade to a miss; storage faults on write are passed to the
//     WarnFunc and the fetched value is still returned.
type Middleware struct {
	cache  Cache
	policy Policy
	warn   WarnFunc
}

// NewMiddleware creates a new cache middleware. A nil warn discards storage
// faults.
func NewMiddleware(cache Cache, policy Policy, warn WarnFunc) *Middleware {
	if warn == nil {
		warn = func(context.Context, error) {}
	}
	return &Middleware{
		cache:  cache,
		policy: policy,
		warn:   warn,
	}
}

// Policy returns the middleware's TTL policy.
func (m *Middleware) Policy() Policy {
	return m.policy
}

// Execute returns the cached value for key, or calls fetch and stores its
// result for the policy TTL (or ttl when positive). hit reports whether the
// value came from the cache.
func (m *Middleware) Execute(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (value []byte, hit bool, err error) {
	if m.cache == nil || !m.policy.ShouldCache() {
		value, err = fetch(ctx)
		return value, false, err
	}

	if err := ValidateKey(key); err != nil {
		value, err = fetch(ctx)
		return value, false, err
	}

	cached, ok, getErr := m.cache.Get(ctx, key)
	if getErr != nil {
		m.warn(ctx, getErr)
	} else if ok {
		return cached, true, nil
	}

	value, err = fetch(ctx)
	if err != nil {
		return value, false, err
	}

	if effective := m.policy.EffectiveTTL(ttl); effective > 0 {
		if setErr := m.cache.Set(ctx, key, value, effective); setErr != nil {
			m.warn(ctx, setErr)
		}
	}

	return value, false, nil
}

// Invalidate removes key, reporting failures through the WarnFunc.
func (m *Middleware) Invalidate(ctx context.Context, key string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, key); err != nil {
		m.warn(ctx, err)
	}
}
