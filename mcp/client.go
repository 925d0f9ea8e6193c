// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Client and ClientSession (spec.md §4.5/§5, component C6).

package mcp

import (
	"context"
	"fmt"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/jsonrpc"
)

// RootsListHandler supplies the client's current workspace roots in
// response to a server's roots/list request.
type RootsListHandler func(ctx context.Context, req *ClientRequest[*ListRootsParams]) (*ListRootsResult, error)

// SamplingHandler services a server's sampling/createMessage request by
// invoking the client's configured model.
type SamplingHandler func(ctx context.Context, req *ClientRequest[*CreateMessageParams]) (*CreateMessageResult, error)

// ElicitationHandler services a server's elicitation/create request by
// collecting structured input from the client's user.
type ElicitationHandler func(ctx context.Context, req *ClientRequest[*ElicitParams]) (*ElicitResult, error)

// ClientOptions configures a Client. A nil *ClientOptions means every field
// takes its default.
type ClientOptions struct {
	RootsListHandler   RootsListHandler
	SamplingHandler    SamplingHandler
	ElicitationHandler ElicitationHandler
	// LoggingHandler, if set, receives every notifications/message the
	// server sends.
	LoggingHandler func(ctx context.Context, params *LoggingMessageParams)
}

// Client opens ClientSessions against servers over any Transport.
type Client struct {
	impl *Implementation
	opts ClientOptions
}

// NewClient creates a Client that identifies itself to servers as impl.
func NewClient(impl *Implementation, opts *ClientOptions) *Client {
	o := ClientOptions{}
	if opts != nil {
		o = *opts
	}
	return &Client{impl: impl, opts: o}
}

// ClientSessionOptions is reserved for future per-connection client
// configuration; it carries no fields today.
type ClientSessionOptions struct{}

// Connect opens a Transport and performs the initialize/initialized
// handshake before returning, so a ClientSession is always in the
// Operational state once Connect succeeds (spec.md §4.5).
func (c *Client) Connect(ctx context.Context, t Transport, _ *ClientSessionOptions) (*ClientSession, error) {
	conn, err := t.Connect(ctx)
	if err != nil {
		return nil, err
	}
	cs := &ClientSession{client: c}
	cs.base = newBaseSession(conn)
	cs.base.dispatch = cs.handle
	cs.base.setState(stateInitializing)

	go cs.base.run(ctx)

	var initRes InitializeResult
	initParams := &InitializeParams{
		ProtocolVersion: LatestProtocolVersion,
		ClientInfo:      c.impl,
		Capabilities:    c.capabilities(),
	}
	if err := cs.base.call(ctx, "initialize", initParams, &initRes); err != nil {
		_ = cs.base.closeSession()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if err := cs.base.notify(ctx, "notifications/initialized", &InitializedParams{}); err != nil {
		_ = cs.base.closeSession()
		return nil, fmt.Errorf("notifications/initialized: %w", err)
	}
	cs.base.setState(stateOperational)
	return cs, nil
}

func (c *Client) capabilities() *ClientCapabilities {
	caps := &ClientCapabilities{}
	if c.opts.RootsListHandler != nil {
		caps.Roots = &RootsCapability{}
	}
	if c.opts.SamplingHandler != nil {
		caps.Sampling = &SamplingCapability{}
	}
	if c.opts.ElicitationHandler != nil {
		caps.Elicitation = &ElicitationCapability{}
	}
	return caps
}

// ClientSession is one connection from a Client to a server.
type ClientSession struct {
	client *Client
	base   *baseSession
}

func (cs *ClientSession) getState() sessionState { return cs.base.getState() }

// Wait blocks until the session's connection closes.
func (cs *ClientSession) Wait() error { return cs.base.wait() }

// Close closes the session's connection.
func (cs *ClientSession) Close() error { return cs.base.closeSession() }

// Ping sends a ping request to the server.
func (cs *ClientSession) Ping(ctx context.Context, _ *PingParams) error {
	return cs.base.call(ctx, "ping", &PingParams{}, new(EmptyResult))
}

// ListTools lists the server's tools.
func (cs *ClientSession) ListTools(ctx context.Context, params *ListToolsParams) (*ListToolsResult, error) {
	if params == nil {
		params = &ListToolsParams{}
	}
	var res ListToolsResult
	if err := cs.base.call(ctx, "tools/list", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CallTool invokes a tool by name.
func (cs *ClientSession) CallTool(ctx context.Context, params *CallToolParams) (*CallToolResult, error) {
	var res CallToolResult
	if err := cs.base.call(ctx, "tools/call", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResources lists the server's concrete resources.
func (cs *ClientSession) ListResources(ctx context.Context, params *ListResourcesParams) (*ListResourcesResult, error) {
	if params == nil {
		params = &ListResourcesParams{}
	}
	var res ListResourcesResult
	if err := cs.base.call(ctx, "resources/list", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResourceTemplates lists the server's resource templates.
func (cs *ClientSession) ListResourceTemplates(ctx context.Context, params *ListResourceTemplatesParams) (*ListResourceTemplatesResult, error) {
	if params == nil {
		params = &ListResourceTemplatesParams{}
	}
	var res ListResourceTemplatesResult
	if err := cs.base.call(ctx, "resources/templates/list", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ReadResource reads a resource by URI.
func (cs *ClientSession) ReadResource(ctx context.Context, params *ReadResourceParams) (*ReadResourceResult, error) {
	var res ReadResourceResult
	if err := cs.base.call(ctx, "resources/read", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SubscribeResource subscribes to update notifications for a URI.
func (cs *ClientSession) SubscribeResource(ctx context.Context, params *SubscribeParams) error {
	return cs.base.call(ctx, "resources/subscribe", params, new(EmptyResult))
}

// UnsubscribeResource cancels a prior subscription.
func (cs *ClientSession) UnsubscribeResource(ctx context.Context, params *UnsubscribeParams) error {
	return cs.base.call(ctx, "resources/unsubscribe", params, new(EmptyResult))
}

// ListPrompts lists the server's prompts.
func (cs *ClientSession) ListPrompts(ctx context.Context, params *ListPromptsParams) (*ListPromptsResult, error) {
	if params == nil {
		params = &ListPromptsParams{}
	}
	var res ListPromptsResult
	if err := cs.base.call(ctx, "prompts/list", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPrompt renders a prompt by name.
func (cs *ClientSession) GetPrompt(ctx context.Context, params *GetPromptParams) (*GetPromptResult, error) {
	var res GetPromptResult
	if err := cs.base.call(ctx, "prompts/get", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Complete requests completion candidates for one prompt or resource
// template argument.
func (cs *ClientSession) Complete(ctx context.Context, params *CompleteParams) (*CompleteResult, error) {
	var res CompleteResult
	if err := cs.base.call(ctx, "completion/complete", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetLoggingLevel requests that the server send only notifications/message
// entries at level or higher severity.
func (cs *ClientSession) SetLoggingLevel(ctx context.Context, level LoggingLevel) error {
	return cs.base.call(ctx, "logging/setLevel", &SetLevelParams{Level: level}, new(EmptyResult))
}

// handle dispatches one inbound request or notification from the server.
func (cs *ClientSession) handle(ctx context.Context, req *jsonrpc.Request) {
	switch req.Method {
	case "roots/list":
		var p ListRootsParams
		_ = json.Unmarshal(req.Params, &p)
		if cs.client.opts.RootsListHandler == nil {
			cs.base.respond(ctx, req.ID, &ListRootsResult{}, nil)
			return
		}
		res, err := cs.client.opts.RootsListHandler(ctx, &ClientRequest[*ListRootsParams]{Session: cs, Params: &p})
		cs.base.respond(ctx, req.ID, res, err)
	case "sampling/createMessage":
		var p CreateMessageParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			cs.base.respond(ctx, req.ID, nil, invalidParamsError("invalid sampling/createMessage params: %v", err))
			return
		}
		if cs.client.opts.SamplingHandler == nil {
			cs.base.respond(ctx, req.ID, nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "client does not support sampling"})
			return
		}
		res, err := cs.client.opts.SamplingHandler(ctx, &ClientRequest[*CreateMessageParams]{Session: cs, Params: &p})
		cs.base.respond(ctx, req.ID, res, err)
	case "elicitation/create":
		var p ElicitParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			cs.base.respond(ctx, req.ID, nil, invalidParamsError("invalid elicitation/create params: %v", err))
			return
		}
		if cs.client.opts.ElicitationHandler == nil {
			cs.base.respond(ctx, req.ID, nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "client does not support elicitation"})
			return
		}
		res, err := cs.client.opts.ElicitationHandler(ctx, &ClientRequest[*ElicitParams]{Session: cs, Params: &p})
		cs.base.respond(ctx, req.ID, res, err)
	case "ping":
		cs.base.respond(ctx, req.ID, &EmptyResult{}, nil)
	case "notifications/message":
		if cs.client.opts.LoggingHandler != nil {
			var p LoggingMessageParams
			if err := json.Unmarshal(req.Params, &p); err == nil {
				cs.client.opts.LoggingHandler(ctx, &p)
			}
		}
	case "notifications/tools/list_changed", "notifications/resources/list_changed",
		"notifications/prompts/list_changed", "notifications/resources/updated",
		"notifications/progress":
		// No default client-side cache to invalidate; callers that care
		// about these poll ListTools/ListResources/ListPrompts directly.
	}
}
