// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/corewire/mcp-go/jsonrpc"
)

// TestCapabilitiesGating exercises Scenario S1 / spec.md §6: a capability is
// advertised iff at least one feature of that kind is registered.
func TestCapabilitiesGating(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)

	caps := s.capabilities()
	if caps.Tools != nil {
		t.Error("Tools capability advertised with no tools registered")
	}
	if caps.Resources != nil {
		t.Error("Resources capability advertised with no resources registered")
	}
	if caps.Prompts != nil {
		t.Error("Prompts capability advertised with no prompts registered")
	}
	if caps.Completions != nil {
		t.Error("Completions capability advertised with no completions registered")
	}
	if caps.Logging == nil {
		t.Error("Logging capability missing; it is a built-in session feature and should always be present")
	}

	if err := s.AddTool(&Tool{Name: "t", InputSchema: &jsonschema.Schema{Type: "object"}}, noopToolHandler); err != nil {
		t.Fatal(err)
	}
	if err := s.AddResource(&Resource{URI: "file:///x"}, func(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error) {
		return &ReadResourceResult{}, nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPrompt(&Prompt{Name: "p"}, codReviewPromptHandler); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCompletion(&CompleteReference{Type: "ref/prompt", Name: "p"}, func(ctx context.Context, req *ServerRequest[*CompleteParams]) (*CompleteResult, error) {
		return &CompleteResult{}, nil
	}); err != nil {
		t.Fatal(err)
	}

	caps = s.capabilities()
	if caps.Tools == nil {
		t.Error("Tools capability missing after registering a tool")
	}
	if caps.Resources == nil {
		t.Error("Resources capability missing after registering a resource")
	}
	if caps.Prompts == nil {
		t.Error("Prompts capability missing after registering a prompt")
	}
	if caps.Completions == nil {
		t.Error("Completions capability missing after registering a completion")
	}
}

// TestHandshakeGating exercises Inv.2 / Scenario S1: any non-handshake
// request sent before notifications/initialized is rejected with
// CodeServerNotInitialized.
func TestHandshakeGating(t *testing.T) {
	server := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)
	ctx := context.Background()
	clientTransport, serverTransport := NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	defer ss.Close()

	conn, err := clientTransport.Connect(ctx)
	if err != nil {
		t.Fatalf("clientTransport.Connect: %v", err)
	}
	defer conn.Close()

	id := jsonrpc.NewID(int64(1))
	if err := conn.Write(ctx, &jsonrpc.Request{ID: id, Method: "tools/list"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	resp, ok := msg.(*jsonrpc.Response)
	if !ok {
		t.Fatalf("got %T, want *jsonrpc.Response", msg)
	}
	if resp.Error == nil {
		t.Fatal("tools/list before initialize succeeded, want CodeServerNotInitialized")
	}
	if resp.Error.Code != jsonrpc.CodeServerNotInitialized {
		t.Errorf("error code = %d, want %d", resp.Error.Code, jsonrpc.CodeServerNotInitialized)
	}

	// Now complete the handshake and confirm the same method succeeds.
	initID := jsonrpc.NewID(int64(2))
	if err := conn.Write(ctx, &jsonrpc.Request{ID: initID, Method: "initialize", Params: marshalT(t, &InitializeParams{
		ProtocolVersion: LatestProtocolVersion,
		ClientInfo:      &Implementation{Name: "c", Version: "v1"},
		Capabilities:    &ClientCapabilities{},
	})}); err != nil {
		t.Fatalf("Write initialize: %v", err)
	}
	if _, err := conn.Read(ctx); err != nil {
		t.Fatalf("Read initialize response: %v", err)
	}
	if err := conn.Write(ctx, &jsonrpc.Request{Method: "notifications/initialized"}); err != nil {
		t.Fatalf("Write notifications/initialized: %v", err)
	}

	listID := jsonrpc.NewID(int64(3))
	if err := conn.Write(ctx, &jsonrpc.Request{ID: listID, Method: "tools/list"}); err != nil {
		t.Fatalf("Write tools/list: %v", err)
	}
	msg, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read tools/list response: %v", err)
	}
	resp, ok = msg.(*jsonrpc.Response)
	if !ok {
		t.Fatalf("got %T, want *jsonrpc.Response", msg)
	}
	if resp.Error != nil {
		t.Fatalf("tools/list after handshake failed: %v", resp.Error)
	}
}
