package protocol

import (
	"context"

	"github.com/jonwraymond/toolgate/observe"
)

// InstrumentInvoker wraps an invoker so every tool call runs inside the
// observability middleware: one span, one metrics record, one structured
// log line per invocation.
func InstrumentInvoker(inv ToolInvoker, mw *observe.Middleware) ToolInvoker {
	return &instrumentedInvoker{execute: mw.Wrap(func(ctx context.Context, _ observe.CallMeta, input any) (any, error) {
		return inv.CallTool(ctx, input.(ToolCall))
	})}
}

type instrumentedInvoker struct {
	execute observe.ExecuteFunc
}

func (i *instrumentedInvoker) CallTool(ctx context.Context, call ToolCall) ([]Content, error) {
	meta := observe.CallMeta{Method: "tools/call", Tool: call.Name}
	if call.Identity != nil {
		meta.AuthMethod = string(call.Identity.Method)
		meta.Principal = call.Identity.UserID
	}

	result, err := i.execute(ctx, meta, call)
	if err != nil {
		return nil, err
	}
	return result.([]Content), nil
}
