// Package health provides health checking primitives for the gateway.
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. Use
// Aggregator to combine multiple checks into a single composite check and
// the HTTP handlers to expose them:
//
//	agg := health.NewAggregator()
//	agg.Register("keyset", health.NewPingChecker("keyset", keySetProvider))
//
//	// Liveness endpoint (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness endpoint with component checks
//	http.Handle("/readyz", health.ReadinessHandler(agg))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(agg))
package health
