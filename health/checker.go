package health

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component answers but reports a problem.
	StatusDegraded
	// StatusUnhealthy indicates the component is unusable.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Result contains the outcome of a health check.
type Result struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Duration  time.Duration  `json:"duration_ns"`
	Timestamp time.Time      `json:"timestamp"`
	Error     error          `json:"-"`
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded creates a degraded result.
func Degraded(message string, err error) Result {
	return Result{Status: StatusDegraded, Message: message, Error: err, Timestamp: time.Now()}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails adds details to a result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker is the interface for health checks.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc creates a new CheckerFunc.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

// Name returns the name of this checker.
func (f *CheckerFunc) Name() string { return f.name }

// Check performs the health check.
func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// Pinger is anything that can confirm it is reachable, such as a cache
// store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingChecker reports Healthy when p.Ping succeeds.
func NewPingChecker(name string, p Pinger) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		if err := p.Ping(ctx); err != nil {
			return Unhealthy(fmt.Sprintf("%s unreachable", name), err)
		}
		return Healthy(fmt.Sprintf("%s reachable", name))
	})
}

// Probe calls a status endpoint and returns its decoded body.
type Probe func(ctx context.Context) (map[string]any, error)

// healthyStatuses are the "status" values a probe may report when fine.
var healthyStatuses = []string{"healthy", "ok", "ready", "up"}

// NewProbeChecker reports the outcome of a status endpoint. A failed call is
// Unhealthy; a body whose "status" field is present but not one of healthy,
// ok, ready or up is Degraded. The body is kept as the result details.
func NewProbeChecker(name string, probe Probe) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		body, err := probe(ctx)
		if err != nil {
			return Unhealthy(fmt.Sprintf("%s check failed", name), err)
		}

		status, ok := body["status"].(string)
		if ok && !isHealthyStatus(status) {
			return Degraded(fmt.Sprintf("%s reports %q", name, status),
				fmt.Errorf("%w: %s", ErrUnexpectedStatus, status)).WithDetails(body)
		}
		return Healthy(fmt.Sprintf("%s ok", name)).WithDetails(body)
	})
}

func isHealthyStatus(s string) bool {
	for _, h := range healthyStatuses {
		if strings.EqualFold(s, h) {
			return true
		}
	}
	return false
}
