// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

type greetArgs struct {
	Name string `json:"name"`
}

type greetOutput struct {
	Greeting string `json:"greeting"`
}

// TestToolCallSuccess exercises Scenario S2: a well-formed call to a
// registered tool returns structured content matching its declared output
// schema, with IsError unset.
func TestToolCallSuccess(t *testing.T) {
	handler := func(ctx context.Context, req *CallToolRequest, args greetArgs) (*CallToolResult, greetOutput, error) {
		return &CallToolResult{Content: []Content{&TextContent{Text: "hi"}}}, greetOutput{Greeting: "hi " + args.Name}, nil
	}
	cs, _, cleanup := basicConnection(t, func(s *Server) {
		if err := AddTool(s, &Tool{Name: "greet"}, handler); err != nil {
			t.Fatal(err)
		}
	})
	defer cleanup()

	res, err := cs.CallTool(context.Background(), &CallToolParams{
		Name:      "greet",
		Arguments: marshalT(t, greetArgs{Name: "ada"}),
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("IsError = true, content = %v, want a successful result", res.Content)
	}
	out, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("StructuredContent = %#v (%T), want map[string]any", res.StructuredContent, res.StructuredContent)
	}
	if out["greeting"] != "hi ada" {
		t.Errorf("structuredContent.greeting = %v, want %q", out["greeting"], "hi ada")
	}
}

// TestToolCallOutputSchemaViolation exercises Scenario S3: a tool that
// returns structured content violating its own declared output schema
// surfaces the violation as a tool-level error (IsError:true), never as a
// transport-level JSON-RPC error, so the session stays healthy. This uses
// the untyped AddTool path with an explicit OutputSchema, since the typed
// AddTool[In, Out] always sets StructuredContent to its Go return value, which can never
// violate a schema inferred from that same value's type.
func TestToolCallOutputSchemaViolation(t *testing.T) {
	outputSchema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"greeting": {Type: "string"},
		},
		Required: []string{"greeting"},
	}
	handler := func(ctx context.Context, req *CallToolRequest, args any) (*CallToolResult, error) {
		return &CallToolResult{
			Content:           []Content{&TextContent{Text: "hi"}},
			StructuredContent: map[string]any{"unexpected": true},
		}, nil
	}
	cs, _, cleanup := basicConnection(t, func(s *Server) {
		if err := s.AddTool(&Tool{
			Name:         "greet",
			InputSchema:  &jsonschema.Schema{Type: "object"},
			OutputSchema: outputSchema,
		}, handler); err != nil {
			t.Fatal(err)
		}
	})
	defer cleanup()

	res, err := cs.CallTool(context.Background(), &CallToolParams{
		Name:      "greet",
		Arguments: marshalT(t, map[string]any{}),
	})
	if err != nil {
		t.Fatalf("CallTool returned a transport error %v, want a tool-level IsError result", err)
	}
	if !res.IsError {
		t.Fatalf("IsError = false, want true for output violating the tool's schema")
	}
	if len(res.Content) == 0 {
		t.Fatal("IsError result has no content describing the violation")
	}
	text, ok := res.Content[0].(*TextContent)
	if !ok {
		t.Fatalf("Content[0] = %T, want *TextContent", res.Content[0])
	}
	if !strings.Contains(text.Text, "does not match") {
		t.Errorf("violation message = %q, want it to mention the schema mismatch", text.Text)
	}
}
