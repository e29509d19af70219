package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout applies when TimeoutConfig.Timeout is not positive.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout wraps operations with a deadline.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Timeout{config: config}
}

// Execute runs op with a deadline derived from ctx.
//
// When the deadline passes before op returns, the returned error matches
// ErrTimeout. A result op delivered by the time the deadline is noticed
// wins. op must honor ctx; Execute does not wait for it after the deadline.
// Cancellation of ctx by the caller is returned as ctx.Err().
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()
	return t.wait(ctx, done)
}

func (t *Timeout) wait(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return t.settle(ctx, err)
	case <-ctx.Done():
		select {
		case err := <-done:
			return t.settle(ctx, err)
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return t.expired()
		}
		return ctx.Err()
	}
}

// settle maps a finished op's error: failures after the deadline are
// reported as timeouts.
func (t *Timeout) settle(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return t.expired()
	}
	return err
}

func (t *Timeout) expired() error {
	return fmt.Errorf("%w after %s", ErrTimeout, t.config.Timeout)
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout runs op with the given timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	return NewTimeout(TimeoutConfig{Timeout: timeout}).Execute(ctx, op)
}
