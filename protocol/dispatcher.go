package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/observe"
)

// Sentinel errors for dispatcher construction.
var (
	ErrNilLister  = errors.New("protocol: tool lister is required")
	ErrNilInvoker = errors.New("protocol: tool invoker is required")
)

// Config configures the dispatcher.
type Config struct {
	// Name identifies the server in the initialize handshake.
	Name string

	// Version is the server version reported in the handshake.
	Version string

	// StaticTokenHeader is the header checked first when extracting the
	// caller's credential for tool calls. When empty, NewHandler fills it
	// from the authenticator's static scheme; "X-API-Key" is the final
	// fallback.
	StaticTokenHeader string

	// Logger receives dispatch events. Defaults to a no-op logger.
	Logger observe.Logger
}

// Dispatcher routes JSON-RPC 2.0 requests to the MCP method set. It is
// stateless across calls and safe for concurrent use.
type Dispatcher struct {
	config  Config
	lister  ToolLister
	invoker ToolInvoker
	logger  observe.Logger
}

// NewDispatcher creates a dispatcher. Both collaborators are required;
// missing wiring fails here, not on the first tools call.
func NewDispatcher(config Config, lister ToolLister, invoker ToolInvoker) (*Dispatcher, error) {
	if lister == nil {
		return nil, ErrNilLister
	}
	if invoker == nil {
		return nil, ErrNilInvoker
	}

	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Dispatcher{
		config:  config,
		lister:  lister,
		invoker: invoker,
		logger:  config.Logger,
	}, nil
}

// Handle parses and dispatches one JSON-RPC request body. A nil return
// means the request was a notification and gets no envelope. Protocol
// failures are returned in-band as error responses, never as Go errors.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) *Response {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		d.logger.Warn(ctx, "malformed request body", observe.Field{Key: "error", Value: err.Error()})
		return newError(idFromRawBody(body), CodeInternalError, "Internal error: "+err.Error())
	}

	meta := observe.CallMeta{Method: req.Method}
	if id := auth.IdentityFromContext(ctx); id != nil {
		meta.AuthMethod = string(id.Method)
		meta.Principal = id.UserID
	}
	logger := d.logger.WithCall(meta)

	switch {
	case req.Method == "initialize":
		logger.Info(ctx, "initialize")
		return newResult(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: ToolCapability{ListChanged: true}},
			ServerInfo:      ServerInfo{Name: d.config.Name, Version: d.config.Version},
		})

	case isNotification(req.Method):
		logger.Debug(ctx, "notification acknowledged")
		return nil

	case req.Method == "tools/list":
		return d.handleListTools(ctx, logger, &req)

	case req.Method == "tools/call":
		return d.handleCallTool(ctx, &req, meta)

	default:
		logger.Warn(ctx, "method not found")
		return newError(req.ID, CodeMethodNotFound, "Method not found: "+req.Method)
	}
}

// isNotification reports whether a method gets no response envelope.
func isNotification(method string) bool {
	return method == "initialized" ||
		strings.HasPrefix(method, "notifications/") ||
		strings.HasPrefix(method, "$/")
}

func (d *Dispatcher) handleListTools(ctx context.Context, logger observe.Logger, req *Request) *Response {
	tools, err := d.lister.ListTools(ctx)
	if err != nil {
		logger.Error(ctx, "list tools failed", observe.Field{Key: "error", Value: err.Error()})
		return newError(req.ID, CodeInternalError, "Internal error: "+err.Error())
	}

	// Empty list serializes as [], never null.
	if tools == nil {
		tools = []Tool{}
	}

	logger.Info(ctx, "tools listed", observe.Field{Key: "count", Value: len(tools)})
	return newResult(req.ID, ListToolsResult{Tools: tools})
}

// callParams is the tools/call params shape.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (d *Dispatcher) handleCallTool(ctx context.Context, req *Request, meta observe.CallMeta) *Response {
	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newError(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
		}
	}

	if params.Name == "" {
		return newError(req.ID, CodeInvalidParams, "Invalid params: tool name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	meta.Tool = params.Name
	logger := d.logger.WithCall(meta)

	call := ToolCall{
		Name:      params.Name,
		Arguments: params.Arguments,
		Identity:  auth.IdentityFromContext(ctx),
	}
	call.Credential, call.CredentialIsStatic = d.extractCredential(ctx)

	contents, err := d.invoker.CallTool(ctx, call)
	if err != nil {
		logger.Error(ctx, "tool call failed", observe.Field{Key: "error", Value: err.Error()})
		return newError(req.ID, CodeInternalError, "Internal error: "+err.Error())
	}
	if contents == nil {
		contents = []Content{}
	}

	logger.Info(ctx, "tool call completed")
	return newResult(req.ID, CallToolResult{Content: contents})
}

// extractCredential pulls the caller's credential from the request
// headers in context: the static-token header wins, then the bearer
// token from Authorization.
func (d *Dispatcher) extractCredential(ctx context.Context) (credential string, isStatic bool) {
	if v := auth.GetHeader(ctx, d.staticHeader()); v != "" {
		return v, true
	}
	if v := auth.GetHeader(ctx, "Authorization"); v != "" {
		return strings.TrimPrefix(v, "Bearer "), false
	}
	return "", false
}

func (d *Dispatcher) staticHeader() string {
	if d.config.StaticTokenHeader != "" {
		return d.config.StaticTokenHeader
	}
	return "X-API-Key"
}

// idFromRawBody makes a best effort to recover the request id from an
// otherwise unusable body so the error response can still echo it.
func idFromRawBody(body []byte) json.RawMessage {
	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.ID
}
