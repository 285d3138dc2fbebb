// Package protocol implements a JSON-RPC 2.0 dispatcher for the MCP
// method surface: initialize, notifications, tools/list and tools/call.
//
// The dispatcher is transport-agnostic and stateless; NewHandler mounts
// it behind HTTP POST with dual authentication, plus a GET endpoint
// serving server metadata.
package protocol
