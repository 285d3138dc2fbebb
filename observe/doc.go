// Package observe provides observability primitives for the protocol
// front: structured request logging, OpenTelemetry tracing and metrics
// for RPC dispatch and tool invocation. It is a pure instrumentation
// library; consumers inject the observer into the dispatcher and auth
// layers rather than reaching into ambient global state.
package observe
