// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file holds the generic request wrappers and their per-method
// instantiations.

package mcp

// ServerRequest wraps the params of a request received by a server, together
// with the session it arrived on. P must carry "_meta" (TransportContext
// data such as a progress token travels there; spec.md's Data Model).
type ServerRequest[P withMeta] struct {
	Session *ServerSession
	Params  P
}

// ClientRequest wraps the params of a request received by a client.
type ClientRequest[P withMeta] struct {
	Session *ClientSession
	Params  P
}

type (
	CallToolRequest             = ServerRequest[*CallToolParams]
	CompleteRequest             = ServerRequest[*CompleteParams]
	GetPromptRequest            = ServerRequest[*GetPromptParams]
	InitializedRequest          = ServerRequest[*InitializedParams]
	ListPromptsRequest          = ServerRequest[*ListPromptsParams]
	ListResourcesRequest        = ServerRequest[*ListResourcesParams]
	ListResourceTemplatesRequest = ServerRequest[*ListResourceTemplatesParams]
	ListToolsRequest            = ServerRequest[*ListToolsParams]
	PingServerRequest           = ServerRequest[*PingParams]
	ReadResourceRequest         = ServerRequest[*ReadResourceParams]
	SetLevelRequest             = ServerRequest[*SetLevelParams]
	SubscribeRequest            = ServerRequest[*SubscribeParams]
	UnsubscribeRequest          = ServerRequest[*UnsubscribeParams]
)

type (
	CreateMessageRequest      = ClientRequest[*CreateMessageParams]
	ElicitRequest             = ClientRequest[*ElicitParams]
	InitializeRequest         = ClientRequest[*InitializeParams]
	ListRootsRequest          = ClientRequest[*ListRootsParams]
	PingClientRequest         = ClientRequest[*PingParams]
)
