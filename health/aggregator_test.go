package health

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestNewAggregator_Defaults(t *testing.T) {
	agg := NewAggregator()
	if agg.config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", agg.config.Timeout, DefaultTimeout)
	}

	agg = NewAggregator(AggregatorConfig{Timeout: time.Second, Concurrency: 2})
	if agg.config.Timeout != time.Second || agg.config.Concurrency != 2 {
		t.Errorf("config = %+v", agg.config)
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register(fixed("api", Healthy("ok")))
	agg.Register(fixed("ready", Healthy("ok")))
	agg.Register(fixed("api", Degraded("replaced", nil)))

	if got, want := agg.CheckerNames(), []string{"api", "ready"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CheckerNames() = %v, want %v", got, want)
	}

	r, err := agg.Check(context.Background(), "api")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("replaced checker status = %v", r.Status)
	}
}

func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    Status
	}{
		{name: "none", want: StatusHealthy},
		{name: "all healthy", results: []Result{Healthy("a"), Healthy("b")}, want: StatusHealthy},
		{name: "one degraded", results: []Result{Healthy("a"), Degraded("b", nil)}, want: StatusDegraded},
		{name: "unhealthy wins", results: []Result{Degraded("a", nil), Unhealthy("b", nil), Healthy("c")}, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			for i, r := range tt.results {
				agg.Register(fixed(string(rune('a'+i)), r))
			}

			report := agg.CheckAll(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.results) {
				t.Errorf("len(Checks) = %d, want %d", len(report.Checks), len(tt.results))
			}
			for name, r := range report.Checks {
				if r.Timestamp.IsZero() {
					t.Errorf("check %s has no timestamp", name)
				}
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond})
	agg.Register(fixed("fast", Healthy("ok")))
	agg.Register(NewCheckerFunc("slow", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return Healthy("too late")
	}))

	report := agg.CheckAll(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", report.Status)
	}
	slow := report.Checks["slow"]
	if !errors.Is(slow.Error, ErrCheckTimeout) {
		t.Errorf("slow.Error = %v, want ErrCheckTimeout", slow.Error)
	}
	if report.Checks["fast"].Status != StatusHealthy {
		t.Errorf("fast = %v", report.Checks["fast"].Status)
	}
}

func TestAggregator_Concurrency(t *testing.T) {
	var running, peak atomic.Int32
	agg := NewAggregator(AggregatorConfig{Concurrency: 1})
	for _, name := range []string{"a", "b", "c"} {
		agg.Register(NewCheckerFunc(name, func(context.Context) Result {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return Healthy("ok")
		}))
	}

	report := agg.CheckAll(context.Background())
	if report.Status != StatusHealthy {
		t.Fatalf("Status = %v", report.Status)
	}
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestOverallStatus(t *testing.T) {
	if got := OverallStatus(); got != StatusHealthy {
		t.Errorf("OverallStatus() = %v", got)
	}
	if got := OverallStatus(Healthy(""), Unhealthy("", nil)); got != StatusUnhealthy {
		t.Errorf("OverallStatus() = %v", got)
	}
}
