package cache

import "time"

// Default TTLs for the two calculation endpoints.
const (
	DefaultSingleTTL = 24 * time.Hour
	DefaultBatchTTL  = 7 * 24 * time.Hour
)

// Policy configures caching behavior for one endpoint.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, caching is disabled.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// SinglePolicy returns the policy for single-parameter calculations (24h).
func SinglePolicy() Policy {
	return Policy{DefaultTTL: DefaultSingleTTL}
}

// BatchPolicy returns the policy for batch calculations (7 days).
func BatchPolicy() Policy {
	return Policy{DefaultTTL: DefaultBatchTTL}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
