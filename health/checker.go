package health

import (
	"context"
	"time"
)

// Status is the health state of one dependency.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

// String returns the lowercase status name used in health responses.
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

// Result is the outcome of one check.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time

	// Error is the underlying failure for unhealthy results.
	Error error
}

// Healthy builds a healthy result.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded builds a degraded result.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy builds an unhealthy result carrying the failure.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails attaches check-specific metadata, e.g. the tool count
// from the catalog check.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker reports the health of one dependency. The shim ships two:
// the key-set reachability check (PingCheckerAdapter over the auth
// key-set provider) and the tool-catalog check in the protocol package.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckFunc adapts a plain function into a Checker for embeddings that
// want a one-off check without a named type.
type CheckFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckFunc creates a function-backed checker.
func NewCheckFunc(name string, fn func(context.Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (f *CheckFunc) Name() string { return f.name }

func (f *CheckFunc) Check(ctx context.Context) Result { return f.fn(ctx) }

// PingChecker is a Checker whose dependency can also be pinged
// directly for reachability.
type PingChecker interface {
	Checker
	Ping(ctx context.Context) error
}
