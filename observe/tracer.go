package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CallMeta describes one RPC dispatch for telemetry purposes.
type CallMeta struct {
	Method     string // JSON-RPC method name (required)
	Tool       string // tool name for tools/call (may be empty)
	AuthMethod string // scheme that authenticated the caller (may be empty)
	Principal  string // caller's user ID (may be empty)
}

// SpanName returns the deterministic span name for this call.
// Format: rpc.<method> or rpc.<method>.<tool>
func (m CallMeta) SpanName() string {
	if m.Tool != "" {
		return "rpc." + m.Method + "." + m.Tool
	}
	return "rpc." + m.Method
}

// Tracer wraps OpenTelemetry tracing with per-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an RPC dispatch.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with call metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("rpc.method", meta.Method),
	}
	if meta.Tool != "" {
		attrs = append(attrs, attribute.String("rpc.tool", meta.Tool))
	}
	if meta.AuthMethod != "" {
		attrs = append(attrs, attribute.String("rpc.auth_method", meta.AuthMethod))
	}
	if meta.Principal != "" {
		attrs = append(attrs, attribute.String("rpc.principal", meta.Principal))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)

	return ctx, span
}

// EndSpan ends the span, recording error status when err is non-nil.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("rpc.error", true))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Ensure tracerImpl implements Tracer
var _ Tracer = (*tracerImpl)(nil)
