// Package resilience provides the timeout and retry wrappers used around
// remote guideline calls.
//
// Timeout bounds a single attempt and reports expiry as ErrTimeout. Retry
// repeats an operation with a Backoff while RetryIf accepts the error.
// Executor composes both, with the timeout applied to each attempt:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxAttempts: 3,
//	        Backoff:     resilience.ExponentialBackoff(200*time.Millisecond, 5*time.Second, 2),
//	        RetryIf:     remote.IsTransient,
//	    })),
//	    resilience.WithTimeout(30*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return call(ctx)
//	})
//
// Nothing in the calculation core retries on its own; retries are opted into
// by wrapping the remote adapter.
package resilience
