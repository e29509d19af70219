package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jonwraymond/guidelinely/calc"
	"github.com/jonwraymond/guidelinely/resilience"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "timeout", err: &calc.TimeoutFault{}, want: true},
		{name: "connection", err: &calc.ConnectionFault{Err: &net.OpError{Op: "dial"}}, want: true},
		{name: "429", err: &calc.RemoteFault{StatusCode: 429}, want: true},
		{name: "500", err: &calc.RemoteFault{StatusCode: 500}, want: true},
		{name: "wrapped 503", err: fmt.Errorf("call: %w", &calc.RemoteFault{StatusCode: 503}), want: true},
		{name: "501", err: &calc.RemoteFault{StatusCode: 501}, want: false},
		{name: "422", err: &calc.RemoteFault{StatusCode: 422}, want: false},
		{name: "validation", err: &calc.ValidationError{Field: "media", Reason: "must not be empty"}, want: false},
		{name: "canceled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGuard_RetriesTransientFaults(t *testing.T) {
	calls := 0
	adapter := calc.AdapterFunc(func(context.Context, *calc.Request) ([]byte, error) {
		calls++
		if calls < 3 {
			return nil, &calc.RemoteFault{StatusCode: 503, Message: "busy"}
		}
		return []byte(`{"results":[]}`), nil
	})

	exec := resilience.NewExecutor(resilience.WithRetry(NewRetry(resilience.RetryConfig{
		MaxAttempts: 3,
		Backoff:     resilience.ConstantBackoff(time.Millisecond),
	})))
	guarded := Guard(adapter, exec)

	req := mustRequest(t)(calc.NewSingleRequest("Copper", "surface_water", calc.ContextInput{}, ""))
	got, err := guarded.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if string(got) != `{"results":[]}` {
		t.Errorf("payload = %s", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGuard_StopsOnPermanentFault(t *testing.T) {
	calls := 0
	adapter := calc.AdapterFunc(func(context.Context, *calc.Request) ([]byte, error) {
		calls++
		return nil, &calc.RemoteFault{StatusCode: 422, Message: "Unknown parameter"}
	})

	exec := resilience.NewExecutor(resilience.WithRetry(NewRetry(resilience.RetryConfig{
		MaxAttempts: 5,
		Backoff:     resilience.ConstantBackoff(time.Millisecond),
	})))

	req := mustRequest(t)(calc.NewSingleRequest("Copper", "surface_water", calc.ContextInput{}, ""))
	_, err := Guard(adapter, exec).Invoke(context.Background(), req)

	var fault *calc.RemoteFault
	if !errors.As(err, &fault) || fault.StatusCode != 422 {
		t.Fatalf("Invoke() error = %v, want 422 fault", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGuard_NilExecutor(t *testing.T) {
	adapter := calc.AdapterFunc(func(context.Context, *calc.Request) ([]byte, error) {
		return []byte("{}"), nil
	})
	got, err := Guard(adapter, nil).Invoke(context.Background(), nil)
	if err != nil || string(got) != "{}" {
		t.Fatalf("Invoke() = %s, %v", got, err)
	}
}
