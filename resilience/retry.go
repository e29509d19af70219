package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff returns the delay before retry number attempt (1-based).
type Backoff func(attempt int) time.Duration

// ConstantBackoff waits d before every retry.
func ConstantBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// LinearBackoff waits step, 2*step, 3*step, ... capped at ceiling.
func LinearBackoff(step, ceiling time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return capDelay(step*time.Duration(attempt), ceiling)
	}
}

// ExponentialBackoff waits initial, initial*multiplier, ... capped at ceiling.
func ExponentialBackoff(initial, ceiling time.Duration, multiplier float64) Backoff {
	if multiplier <= 0 {
		multiplier = 2
	}
	return func(attempt int) time.Duration {
		d := float64(initial) * math.Pow(multiplier, float64(attempt-1))
		if d >= float64(math.MaxInt64) {
			return capDelay(time.Duration(math.MaxInt64), ceiling)
		}
		return capDelay(time.Duration(d), ceiling)
	}
}

func capDelay(d, ceiling time.Duration) time.Duration {
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the first.
	// Default: 3
	MaxAttempts int

	// Backoff computes the delay before each retry.
	// Default: ExponentialBackoff(100ms, 30s, 2)
	Backoff Backoff

	// Jitter adds up to this fraction of the delay at random, in [0, 1].
	// Default: 0
	Jitter float64

	// RetryIf decides whether an error is worth another attempt.
	// Default: every non-nil error is retried.
	RetryIf func(err error) bool

	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry repeats an operation with backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.Backoff == nil {
		config.Backoff = ExponentialBackoff(100*time.Millisecond, 30*time.Second, 2)
	}
	if config.Jitter < 0 {
		config.Jitter = 0
	}
	if config.Jitter > 1 {
		config.Jitter = 1
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, RetryIf rejects its error, or
// MaxAttempts is reached. The last error is returned unchanged so callers
// can still inspect it.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil || !r.config.RetryIf(err) || attempt >= r.config.MaxAttempts {
			return err
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *Retry) delay(attempt int) time.Duration {
	d := r.config.Backoff(attempt)
	if r.config.Jitter > 0 && d > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Float64() * r.config.Jitter * float64(d))
	}
	return d
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
