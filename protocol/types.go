package protocol

import (
	"context"
	"encoding/json"

	"github.com/jonwraymond/toolgate/auth"
)

// Version is the JSON-RPC protocol version.
const Version = "2.0"

// ProtocolVersion is the MCP protocol revision this dispatcher speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request envelope. ID stays raw so the
// response can echo it exactly; a nil ID means the field was absent
// (notification), while the literal "null" is a present null id.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. A nil ID marshals as
// null, which is what the protocol requires when the request id could
// not be recovered.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// newResult builds a success response echoing the request id.
func newResult(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// newError builds an error response echoing the request id.
func newError(id json.RawMessage, code int, message string) *Response {
	return &Response{JSONRPC: Version, ID: id, Error: &RPCError{Code: code, Message: message}}
}

// Tool describes one invokable tool.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Content is one block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCall carries everything an invoker needs for one tools/call.
type ToolCall struct {
	// Name is the tool to invoke.
	Name string

	// Arguments are the call arguments. Never nil; defaults to an empty
	// map when the request omits them.
	Arguments map[string]any

	// Credential is the caller's raw credential, forwarded so invokers
	// can pass it to backends: the static-token header value when
	// present, otherwise the bearer token from Authorization.
	Credential string

	// CredentialIsStatic is true when Credential came from the
	// static-token header rather than Authorization.
	CredentialIsStatic bool

	// Identity is the authenticated caller. Nil only when the dispatcher
	// runs without the auth middleware.
	Identity *auth.Identity
}

// ToolLister enumerates the tools this server exposes.
type ToolLister interface {
	ListTools(ctx context.Context) ([]Tool, error)
}

// ToolInvoker executes one tool call.
type ToolInvoker interface {
	CallTool(ctx context.Context, call ToolCall) ([]Content, error)
}

// InitializeResult is the initialize response payload.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities advertises what this server supports.
type Capabilities struct {
	Tools ToolCapability `json:"tools"`
}

// ToolCapability advertises tool-related capabilities.
type ToolCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ListToolsResult is the tools/list response payload.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolResult is the tools/call response payload.
type CallToolResult struct {
	Content []Content `json:"content"`
}
