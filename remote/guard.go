package remote

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/jonwraymond/guidelinely/calc"
	"github.com/jonwraymond/guidelinely/resilience"
)

// IsTransient reports whether err is worth retrying: timeouts, connection
// failures, 429 and 5xx responses other than 501.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, calc.ErrTimeout) || errors.Is(err, calc.ErrConnection) {
		return true
	}
	status := calc.StatusCode(err)
	switch {
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusNotImplemented:
		return false
	case status >= 500:
		return true
	default:
		return false
	}
}

// Guard runs every Invoke of adapter through exec. A nil exec returns
// adapter unchanged.
func Guard(adapter calc.Adapter, exec *resilience.Executor) calc.Adapter {
	if exec == nil {
		return adapter
	}
	return calc.AdapterFunc(func(ctx context.Context, req *calc.Request) ([]byte, error) {
		// An attempt abandoned by a per-attempt timeout may still finish.
		var payload atomic.Pointer[[]byte]
		err := exec.Execute(ctx, func(ctx context.Context) error {
			data, err := adapter.Invoke(ctx, req)
			if err != nil {
				return err
			}
			payload.Store(&data)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return *payload.Load(), nil
	})
}

// NewRetry returns a retry policy that only retries transient faults.
func NewRetry(cfg resilience.RetryConfig) *resilience.Retry {
	if cfg.RetryIf == nil {
		cfg.RetryIf = IsTransient
	}
	return resilience.NewRetry(cfg)
}
