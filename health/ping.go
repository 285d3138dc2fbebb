package health

import "context"

// Pinger is any component that can report its reachability. The
// key-set provider in the auth package implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheckerAdapter adapts a Pinger into a Checker.
type PingCheckerAdapter struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker that reports healthy when the pinger
// responds without error.
func NewPingChecker(name string, pinger Pinger) *PingCheckerAdapter {
	return &PingCheckerAdapter{name: name, pinger: pinger}
}

// Name returns the name of this checker.
func (p *PingCheckerAdapter) Name() string {
	return p.name
}

// Check performs the reachability check.
func (p *PingCheckerAdapter) Check(ctx context.Context) Result {
	if err := p.pinger.Ping(ctx); err != nil {
		return Unhealthy("ping failed", err)
	}
	return Healthy("reachable")
}

// Ping delegates to the underlying pinger.
func (p *PingCheckerAdapter) Ping(ctx context.Context) error {
	return p.pinger.Ping(ctx)
}

// Ensure PingCheckerAdapter implements PingChecker
var _ PingChecker = (*PingCheckerAdapter)(nil)
