// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Server and ServerSession (spec.md §4.5/§5/§9, components C5 and C7).

package mcp

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/jsonrpc"
)

// ServerOptions configures a Server. A nil *ServerOptions means every field
// takes its default, the configuration idiom used throughout this package
// (spec.md Ambient Stack: "nil means defaults").
type ServerOptions struct {
	// Instructions are returned to the client in InitializeResult, describing
	// how to use the server's features.
	Instructions string
	// Workers bounds the number of concurrently executing blocking tool
	// handlers across all of the Server's sessions, which share one pool
	// (component C4). Zero means defaultWorkers.
	Workers int
	// ImmediateExecution, when true, skips the sync/async bridge entirely:
	// every handler runs on its own dispatch goroutine with no pool limit.
	// Use only for handlers known not to block.
	ImmediateExecution bool
	// ToolCallRate, if nonzero, caps the number of tools/call requests a
	// single session may issue per second, with ToolCallBurst as the bucket
	// size. Exceeding the limit returns CodeInternalError rather than
	// blocking, so a runaway client gets fast feedback instead of queuing.
	ToolCallRate  float64
	ToolCallBurst int
}

// Server holds a feature registry and can be Connect-ed to any number of
// transports, one ServerSession per Connect call (spec.md §5: the registry
// is shared across sessions; each session has its own handshake and
// subscription state).
type Server struct {
	impl *Implementation
	opts ServerOptions
	regs *featureRegistry
	pool *workerPool

	mu           sync.Mutex
	sessions     map[*ServerSession]bool
	sessionOrder []*ServerSession
	limiter      *ToolCallLimiter
}

// NewServer creates a Server that identifies itself to clients as impl.
func NewServer(impl *Implementation, opts *ServerOptions) *Server {
	o := ServerOptions{}
	if opts != nil {
		o = *opts
	}
	var limiter *ToolCallLimiter
	if o.ToolCallRate > 0 {
		limiter = NewToolCallLimiter(o.ToolCallRate, o.ToolCallBurst)
	}
	return &Server{
		impl:     impl,
		opts:     o,
		regs:     newFeatureRegistry(),
		pool:     newWorkerPool(o.Workers),
		sessions: make(map[*ServerSession]bool),
		limiter:  limiter,
	}
}

// AddTool registers a tool with an untyped handler and an explicit schema.
// It returns an error if h is nil or a tool with the same name is already
// registered (spec.md §9 Open Question: a nil handler is a registration
// error, not a silent pass-through that panics on first call; Testable
// Property 6: duplicate registration is rejected).
func (s *Server) AddTool(t *Tool, h ToolHandler) error {
	if h == nil {
		return fmt.Errorf("AddTool %q: nil handler", t.Name)
	}
	st, err := newServerTool(t, fromSync(s.pool, h, s.opts.ImmediateExecution), s.regs.schemaCache)
	if err != nil {
		return fmt.Errorf("AddTool %q: %w", t.Name, err)
	}
	if err := s.regs.addTool(st); err != nil {
		return fmt.Errorf("AddTool %q: %w", t.Name, err)
	}
	s.notifyToolListChanged()
	return nil
}

// AddTool registers a tool whose input and (optionally) output schema are
// inferred from In and Out via reflection (spec.md §4.1: AddTool[In, Out]).
func AddTool[In, Out any](s *Server, t *Tool, h TypedToolHandler[In, Out]) error {
	if h == nil {
		return fmt.Errorf("AddTool %q: nil handler", t.Name)
	}
	wrapped := func(ctx context.Context, req *ServerRequest[*CallToolParams], in In) (*CallToolResult, Out, error) {
		return h(ctx, req, in)
	}
	st, err := newTypedServerTool(t, wrapped, s.regs.schemaCache)
	if err != nil {
		return fmt.Errorf("AddTool %q: %w", t.Name, err)
	}
	st.handler = wrapSyncRaw(s.pool, st.handler, s.opts.ImmediateExecution)
	if err := s.regs.addTool(st); err != nil {
		return fmt.Errorf("AddTool %q: %w", t.Name, err)
	}
	s.notifyToolListChanged()
	return nil
}

func wrapSyncRaw(pool *workerPool, h rawToolHandler, immediate bool) rawToolHandler {
	if immediate {
		return h
	}
	return func(ctx context.Context, req *ServerRequest[*CallToolParams]) (*CallToolResult, error) {
		return pool.run(ctx, func() (*CallToolResult, error) { return h(ctx, req) })
	}
}

// RemoveTools unregisters tools by name and notifies connected clients.
func (s *Server) RemoveTools(names ...string) {
	s.regs.removeTools(names...)
	s.notifyToolListChanged()
}

// AddResource registers a concrete, URI-addressed resource. It returns an
// error if h is nil or a resource with the same URI is already registered
// (spec.md Testable Property 6).
func (s *Server) AddResource(r *Resource, h ResourceHandler) error {
	if h == nil {
		return fmt.Errorf("AddResource %q: nil handler", r.URI)
	}
	if err := s.regs.addResource(&serverResource{resource: r, handler: h}); err != nil {
		return fmt.Errorf("AddResource %q: %w", r.URI, err)
	}
	s.notifyResourceListChanged()
	return nil
}

// RemoveResources unregisters resources by URI and notifies connected clients.
func (s *Server) RemoveResources(uris ...string) {
	s.regs.removeResources(uris...)
	s.notifyResourceListChanged()
}

// AddResourceTemplate registers a URI-templated family of resources.
func (s *Server) AddResourceTemplate(t *ResourceTemplate, h ResourceHandler) error {
	srt, err := newServerResourceTemplate(t, h)
	if err != nil {
		return err
	}
	s.regs.addResourceTemplate(srt)
	s.notifyResourceListChanged()
	return nil
}

// AddPrompt registers a prompt. It returns an error if h is nil or a prompt
// with the same name is already registered (spec.md Testable Property 6).
func (s *Server) AddPrompt(p *Prompt, h PromptHandler) error {
	if h == nil {
		return fmt.Errorf("AddPrompt %q: nil handler", p.Name)
	}
	if err := s.regs.addPrompt(&serverPrompt{prompt: p, handler: h}); err != nil {
		return fmt.Errorf("AddPrompt %q: %w", p.Name, err)
	}
	s.notifyPromptListChanged()
	return nil
}

// RemovePrompts unregisters prompts by name and notifies connected clients.
func (s *Server) RemovePrompts(names ...string) {
	s.regs.removePrompts(names...)
	s.notifyPromptListChanged()
}

// AddCompletion registers a completion handler for a prompt or resource
// reference.
func (s *Server) AddCompletion(ref *CompleteReference, h CompletionHandler) error {
	return s.regs.addCompletion(ref, h)
}

// capabilities reports only the capabilities backed by at least one
// registered feature of that kind (spec.md §6: "a capability is null/absent
// iff the corresponding feature is not offered"). Logging is a built-in
// session feature, not a registered one, so it is always advertised.
func (s *Server) capabilities() *ServerCapabilities {
	caps := &ServerCapabilities{Logging: &LoggingCapability{}}
	if s.regs.hasTools() {
		caps.Tools = &ToolsCapability{ListChanged: true}
	}
	if s.regs.hasResources() {
		caps.Resources = &ResourcesCapability{Subscribe: true, ListChanged: true}
	}
	if s.regs.hasPrompts() {
		caps.Prompts = &PromptsCapability{ListChanged: true}
	}
	if s.regs.hasCompletions() {
		caps.Completions = &CompletionsCapability{}
	}
	return caps
}

func (s *Server) notifyToolListChanged()     { s.broadcast("notifications/tools/list_changed", &ToolListChangedParams{}) }
func (s *Server) notifyResourceListChanged() { s.broadcast("notifications/resources/list_changed", &ResourceListChangedParams{}) }
func (s *Server) notifyPromptListChanged()   { s.broadcast("notifications/prompts/list_changed", &PromptListChangedParams{}) }

// broadcast sends a notification to every connected, operational session, in
// the registration order sessions were connected (spec.md Testable
// Property: notification fan-out preserves session registration order).
func (s *Server) broadcast(method string, params any) {
	s.mu.Lock()
	sessions := append([]*ServerSession(nil), s.sessionOrder...)
	s.mu.Unlock()
	for _, ss := range sessions {
		if ss.getState() == stateOperational {
			_ = ss.notify(context.Background(), method, params)
		}
	}
}

// NotifyResourceUpdated tells every subscriber of uri that it changed.
func (s *Server) NotifyResourceUpdated(uri string) {
	s.mu.Lock()
	sessions := append([]*ServerSession(nil), s.sessionOrder...)
	s.mu.Unlock()
	for _, ss := range sessions {
		if ss.isSubscribed(uri) {
			_ = ss.notify(context.Background(), "notifications/resources/updated", &ResourceUpdatedNotificationParams{URI: uri})
		}
	}
}

// Connect accepts a transport and runs a ServerSession over it until the
// connection closes. The returned ServerSession is already running its read
// loop in the background.
func (s *Server) Connect(ctx context.Context, t Transport, _ *ServerSessionOptions) (*ServerSession, error) {
	conn, err := t.Connect(ctx)
	if err != nil {
		return nil, err
	}
	ss := &ServerSession{
		server:        s,
		subscriptions: make(map[string]bool),
	}
	ss.base = newBaseSession(conn)
	ss.base.dispatch = ss.handle

	s.mu.Lock()
	s.sessions[ss] = true
	s.sessionOrder = append(s.sessionOrder, ss)
	s.mu.Unlock()

	go func() {
		_ = ss.base.run(ctx)
		if s.limiter != nil {
			s.limiter.forget(ss)
		}
		s.mu.Lock()
		delete(s.sessions, ss)
		for i, o := range s.sessionOrder {
			if o == ss {
				s.sessionOrder = append(s.sessionOrder[:i], s.sessionOrder[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()
	return ss, nil
}

// ServerSessionOptions is reserved for future per-connection server
// configuration; it carries no fields today.
type ServerSessionOptions struct{}

// ServerSession is one client's connection to a Server: the handshake state
// machine plus per-session subscription and logging-level state (spec.md
// §4.5, §5).
type ServerSession struct {
	server *Server
	base   *baseSession

	mu            sync.Mutex
	initParams    *InitializeParams
	logLevel      LoggingLevel
	subscriptions map[string]bool
}

func (ss *ServerSession) getState() sessionState { return ss.base.getState() }

// Wait blocks until the session's connection closes.
func (ss *ServerSession) Wait() error { return ss.base.wait() }

// Close closes the session's connection.
func (ss *ServerSession) Close() error { return ss.base.closeSession() }

func (ss *ServerSession) notify(ctx context.Context, method string, params any) error {
	return ss.base.notify(ctx, method, params)
}

func (ss *ServerSession) isSubscribed(uri string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.subscriptions[uri]
}

// NotifyProgress sends a notifications/progress message.
func (ss *ServerSession) NotifyProgress(ctx context.Context, params *ProgressNotificationParams) error {
	return ss.notify(ctx, "notifications/progress", params)
}

// Ping sends a ping request to the client and waits for the response.
func (ss *ServerSession) Ping(ctx context.Context, _ *PingParams) error {
	return ss.base.call(ctx, "ping", &PingParams{}, new(EmptyResult))
}

// ListRoots asks the client for its configured workspace roots.
func (ss *ServerSession) ListRoots(ctx context.Context, params *ListRootsParams) (*ListRootsResult, error) {
	if params == nil {
		params = &ListRootsParams{}
	}
	var res ListRootsResult
	if err := ss.base.call(ctx, "roots/list", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateMessage asks the client to sample from its configured model.
func (ss *ServerSession) CreateMessage(ctx context.Context, params *CreateMessageParams) (*CreateMessageResult, error) {
	var res CreateMessageResult
	if err := ss.base.call(ctx, "sampling/createMessage", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Elicit asks the client to collect structured input from its user.
func (ss *ServerSession) Elicit(ctx context.Context, params *ElicitParams) (*ElicitResult, error) {
	var res ElicitResult
	if err := ss.base.call(ctx, "elicitation/create", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// handle dispatches one inbound request or notification according to the
// session's handshake state (spec.md §4.5: any non-handshake method before
// the initialized notification gets CodeServerNotInitialized).
func (ss *ServerSession) handle(ctx context.Context, req *jsonrpc.Request) {
	state := ss.getState()

	if req.Method == "initialize" {
		ss.handleInitialize(ctx, req)
		return
	}
	if req.Method == "notifications/initialized" {
		ss.base.setState(stateOperational)
		return
	}
	if state != stateOperational {
		ss.base.respond(ctx, req.ID, nil, &jsonrpc.Error{
			Code:    jsonrpc.CodeServerNotInitialized,
			Message: "server not initialized: call initialize and send notifications/initialized first",
		})
		return
	}
	// notifications/cancelled never reaches here: baseSession.run intercepts
	// it before dispatch is invoked, since it acts on the session's own
	// cancel-function table rather than any method-specific state.

	result, err := ss.dispatchOperational(ctx, req)
	ss.base.respond(ctx, req.ID, result, err)
}

func (ss *ServerSession) handleInitialize(ctx context.Context, req *jsonrpc.Request) {
	var params InitializeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		ss.base.respond(ctx, req.ID, nil, invalidParamsError("invalid initialize params: %v", err))
		return
	}
	if !slices.Contains(SupportedProtocolVersions, params.ProtocolVersion) {
		ss.base.respond(ctx, req.ID, nil, invalidParamsError("unsupported protocol version %q (supported: %v)", params.ProtocolVersion, SupportedProtocolVersions))
		return
	}
	ss.mu.Lock()
	ss.initParams = &params
	ss.mu.Unlock()
	ss.base.setState(stateInitializing)

	res := &InitializeResult{
		ProtocolVersion: params.ProtocolVersion,
		ServerInfo:      ss.server.impl,
		Instructions:    ss.server.opts.Instructions,
		Capabilities:    ss.server.capabilities(),
	}
	ss.base.respond(ctx, req.ID, res, nil)
}

// dispatchOperational handles every method legal once the session is
// Operational (spec.md §4's method table).
func (ss *ServerSession) dispatchOperational(ctx context.Context, req *jsonrpc.Request) (any, error) {
	switch req.Method {
	case "ping":
		return &EmptyResult{}, nil
	case "tools/list":
		return &ListToolsResult{Tools: ss.server.regs.listTools()}, nil
	case "tools/call":
		var p CallToolParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid tools/call params: %v", err)
		}
		st, ok := ss.server.regs.tool(p.Name)
		if !ok {
			return nil, invalidParamsError("unknown tool %q", p.Name)
		}
		if lim := ss.server.limiter; lim != nil {
			if !lim.Allow(ss) {
				return nil, &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: "tool call rate limit exceeded"}
			}
		}
		return st.handler(ctx, &ServerRequest[*CallToolParams]{Session: ss, Params: &p})
	case "resources/list":
		return &ListResourcesResult{Resources: ss.server.regs.listResources()}, nil
	case "resources/templates/list":
		return &ListResourceTemplatesResult{ResourceTemplates: ss.server.regs.listResourceTemplates()}, nil
	case "resources/read":
		var p ReadResourceParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid resources/read params: %v", err)
		}
		sr, tmpl := ss.server.regs.resource(p.URI)
		switch {
		case sr != nil:
			return sr.handler(ctx, &ServerRequest[*ReadResourceParams]{Session: ss, Params: &p})
		case tmpl != nil:
			return tmpl.handler(ctx, &ServerRequest[*ReadResourceParams]{Session: ss, Params: &p})
		default:
			return nil, ResourceNotFoundError(p.URI)
		}
	case "resources/subscribe":
		var p SubscribeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid resources/subscribe params: %v", err)
		}
		ss.mu.Lock()
		ss.subscriptions[p.URI] = true
		ss.mu.Unlock()
		return &EmptyResult{}, nil
	case "resources/unsubscribe":
		var p UnsubscribeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid resources/unsubscribe params: %v", err)
		}
		ss.mu.Lock()
		delete(ss.subscriptions, p.URI)
		ss.mu.Unlock()
		return &EmptyResult{}, nil
	case "prompts/list":
		return &ListPromptsResult{Prompts: ss.server.regs.listPrompts()}, nil
	case "prompts/get":
		var p GetPromptParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid prompts/get params: %v", err)
		}
		sp, ok := ss.server.regs.prompt(p.Name)
		if !ok {
			return nil, invalidParamsError("unknown prompt %q", p.Name)
		}
		return sp.handler(ctx, &ServerRequest[*GetPromptParams]{Session: ss, Params: &p})
	case "completion/complete":
		var p CompleteParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid completion/complete params: %v", err)
		}
		if p.Ref == nil {
			return nil, invalidParamsError("missing completion ref")
		}
		sc, ok := ss.server.regs.completion(p.Ref)
		if !ok {
			return &CompleteResult{}, nil
		}
		return sc.handler(ctx, &ServerRequest[*CompleteParams]{Session: ss, Params: &p})
	case "logging/setLevel":
		var p SetLevelParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, invalidParamsError("invalid logging/setLevel params: %v", err)
		}
		ss.mu.Lock()
		ss.logLevel = p.Level
		ss.mu.Unlock()
		return &EmptyResult{}, nil
	default:
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}
}

// Log sends a notifications/message entry to the client if level is at or
// above the level the client last requested via logging/setLevel.
func (ss *ServerSession) Log(ctx context.Context, level LoggingLevel, logger string, data any) error {
	ss.mu.Lock()
	floor := ss.logLevel
	ss.mu.Unlock()
	if !floor.allows(level) {
		return nil
	}
	return ss.notify(ctx, "notifications/message", &LoggingMessageParams{Level: level, Logger: logger, Data: data})
}
