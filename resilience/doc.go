// Package resilience provides timeout wrappers for calls to external
// dependencies.
//
//	err := resilience.ExecuteWithTimeout(ctx, 10*time.Second, fetchKeys)
package resilience
