package protocol

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/toolgate/observe"
)

func newTestMiddleware(t *testing.T) *observe.Middleware {
	t.Helper()

	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "gate"})
	if err != nil {
		t.Fatalf("NewObserver: %v", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver: %v", err)
	}
	return mw
}

func TestInstrumentInvokerPassesThrough(t *testing.T) {
	inner := &mockInvoker{contents: []Content{{Type: "text", Text: "ok"}}}
	inv := InstrumentInvoker(inner, newTestMiddleware(t))

	contents, err := inv.CallTool(context.Background(), ToolCall{Name: "echo", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if len(contents) != 1 || contents[0].Text != "ok" {
		t.Errorf("contents = %+v", contents)
	}
	if inner.lastCall.Name != "echo" {
		t.Errorf("inner call name = %q", inner.lastCall.Name)
	}
}

func TestInstrumentInvokerPropagatesError(t *testing.T) {
	wantErr := errors.New("tool failed")
	inner := &mockInvoker{err: wantErr}
	inv := InstrumentInvoker(inner, newTestMiddleware(t))

	_, err := inv.CallTool(context.Background(), ToolCall{Name: "boom"})
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}
