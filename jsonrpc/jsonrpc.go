// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package jsonrpc defines the wire envelope for JSON-RPC 2.0 messages used by
// the MCP session and transport layers. It treats the MCP method payloads
// (params/results) as opaque json.RawMessage, leaving their shapes to package
// mcp.
package jsonrpc

import (
	"fmt"

	ijson "github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/internal/jsonrpc2"
)

// ProtocolVersion is the JSON-RPC version string carried on every envelope.
const ProtocolVersion = "2.0"

// ID is a request identifier: a string or a number, per the JSON-RPC 2.0
// spec. The zero ID (Raw == nil) denotes "no ID", used by Notification.
type ID struct {
	// Raw holds either a string, an int64, or nil.
	Raw any
}

// NewID builds an ID over a string or integer value.
func NewID[T string | int64](v T) ID { return ID{Raw: v} }

// IsValid reports whether the ID carries a value (as opposed to being the ID
// of a notification).
func (id ID) IsValid() bool { return id.Raw != nil }

func (id ID) String() string {
	switch v := id.Raw.(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch v := id.Raw.(type) {
	case string:
		return ijson.Marshal(v)
	case int64:
		return ijson.Marshal(v)
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("jsonrpc: invalid id type %T", v)
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.Raw = nil
		return nil
	}
	var s string
	if err := ijson.Unmarshal(data, &s); err == nil {
		id.Raw = s
		return nil
	}
	var n int64
	if err := ijson.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("jsonrpc: id must be a string or number: %w", err)
	}
	id.Raw = n
	return nil
}

// Message is the interface implemented by every decoded JSON-RPC envelope:
// *Request (which may or may not carry an ID -- see IsCall) and *Response.
type Message interface {
	// isJSONRPCMessage is unexported so Message has exactly two
	// implementations in this package.
	isJSONRPCMessage()
}

// Request is a JSON-RPC request or notification. A Request IsCall iff it
// carries an ID; otherwise it is a fire-and-forget notification.
type Request struct {
	ID     ID              `json:"id,omitempty"`
	Method string          `json:"method"`
	Params ijson.RawMessage `json:"params,omitempty"`
}

func (*Request) isJSONRPCMessage() {}

// IsCall reports whether the Request expects a Response.
func (r *Request) IsCall() bool { return r.ID.IsValid() }

// wireRequest is the on-the-wire shape, adding the fixed "jsonrpc" field.
type wireRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  ijson.RawMessage `json:"params,omitempty"`
}

func (r *Request) MarshalJSON() ([]byte, error) {
	w := wireRequest{JSONRPC: ProtocolVersion, Method: r.Method, Params: r.Params}
	if r.ID.IsValid() {
		w.ID = &r.ID
	}
	return ijson.Marshal(w)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := ijson.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Method = w.Method
	r.Params = w.Params
	if w.ID != nil {
		r.ID = *w.ID
	} else {
		r.ID = ID{}
	}
	return nil
}

// Response is a JSON-RPC response: exactly one of Result or Error is set.
type Response struct {
	ID     ID              `json:"id"`
	Result ijson.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

func (*Response) isJSONRPCMessage() {}

type wireResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  ijson.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func (r *Response) MarshalJSON() ([]byte, error) {
	return ijson.Marshal(wireResponse{JSONRPC: ProtocolVersion, ID: r.ID, Result: r.Result, Error: r.Error})
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var w wireResponse
	if err := ijson.Unmarshal(data, &w); err != nil {
		return err
	}
	r.ID, r.Result, r.Error = w.ID, w.Result, w.Error
	return nil
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes (spec.md §6, §7).
const (
	CodeParseError     int64 = -32700
	CodeInvalidRequest int64 = -32600
	CodeMethodNotFound int64 = -32601
	CodeInvalidParams  int64 = -32602
	CodeInternalError  int64 = -32603
)

// MCP-specific error codes, negative and disjoint from the standard range
// (spec.md §6).
const (
	// CodeServerNotInitialized is returned for any non-handshake request
	// received before the initialized notification (spec.md §4.5).
	CodeServerNotInitialized int64 = -32002
	// CodeResourceNotFound is returned by resources/read for an unknown URI.
	CodeResourceNotFound int64 = -32002 - 1000
)

// DecodeMessage decodes a single JSON-RPC envelope (request, notification, or
// response). Requests and notifications are first checked with the
// anti-smuggling strict decoder; responses are decoded without that check.
func DecodeMessage(data []byte) (Message, error) {
	var probe struct {
		Method *string `json:"method"`
	}
	if err := ijson.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("jsonrpc: malformed envelope: %w", err)
	}
	if probe.Method != nil {
		req := new(Request)
		if err := jsonrpc2.StrictUnmarshal(data, &wireRequestStrict{}); err != nil {
			return nil, fmt.Errorf("jsonrpc: %w", err)
		}
		if err := ijson.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("jsonrpc: %w", err)
		}
		return req, nil
	}
	resp := new(Response)
	if err := ijson.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("jsonrpc: %w", err)
	}
	return resp, nil
}

// EncodeMessage marshals a single JSON-RPC envelope for transmission.
func EncodeMessage(msg Message) ([]byte, error) {
	return ijson.Marshal(msg)
}

// wireRequestStrict mirrors wireRequest's field set for StrictUnmarshal's
// reflection-based field-name check, which does not understand type aliases
// for json.RawMessage.
type wireRequestStrict struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}
