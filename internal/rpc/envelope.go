package rpc

import "encoding/json"

// Version is the only protocol version this gateway speaks.
const Version = "2.0"

// JSON-RPC 2.0 error codes used by the dispatcher.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is an incoming JSON-RPC 2.0 envelope. Params stays opaque until
// the routed method decodes it; ID stays raw so the response echoes it
// byte-for-byte whatever its JSON type.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Response is an outgoing JSON-RPC 2.0 envelope. Exactly one of Result and
// Error is set. A nil ID marshals as null, matching requests that omitted it.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func resultResponse(id json.RawMessage, result any) Response {
	return Response{Jsonrpc: Version, Result: result, ID: id}
}

func errorResponse(id json.RawMessage, code int, message string, data any) Response {
	return Response{Jsonrpc: Version, Error: &Error{Code: code, Message: message, Data: data}, ID: id}
}
