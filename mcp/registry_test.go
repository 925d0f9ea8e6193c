// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func noopToolHandler(ctx context.Context, req *CallToolRequest, args any) (*CallToolResult, error) {
	return &CallToolResult{Content: []Content{&TextContent{Text: "ok"}}}, nil
}

// TestDuplicateToolRejected exercises Testable Property 6: registering the
// same tool name twice is rejected, not silently replaced.
func TestDuplicateToolRejected(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)
	if err := s.AddTool(&Tool{Name: "dup", InputSchema: &jsonschema.Schema{Type: "object"}}, noopToolHandler); err != nil {
		t.Fatalf("first AddTool: %v", err)
	}
	err := s.AddTool(&Tool{Name: "dup", InputSchema: &jsonschema.Schema{Type: "object"}}, noopToolHandler)
	if err == nil {
		t.Fatal("second AddTool with the same name succeeded, want rejection")
	}
	if names := s.regs.sortedToolNames(); len(names) != 1 || names[0] != "dup" {
		t.Fatalf("sortedToolNames() = %v, want [\"dup\"] (first registration should survive)", names)
	}
}

// TestDuplicateResourceRejected exercises Testable Property 6 for resources.
func TestDuplicateResourceRejected(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)
	h := func(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error) {
		return &ReadResourceResult{}, nil
	}
	if err := s.AddResource(&Resource{URI: "file:///a", Name: "a"}, h); err != nil {
		t.Fatalf("first AddResource: %v", err)
	}
	if err := s.AddResource(&Resource{URI: "file:///a", Name: "a-again"}, h); err == nil {
		t.Fatal("second AddResource with the same URI succeeded, want rejection")
	}
}

// TestDuplicatePromptRejected exercises Testable Property 6 for prompts.
func TestDuplicatePromptRejected(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)
	if err := s.AddPrompt(&Prompt{Name: "p"}, codReviewPromptHandler); err != nil {
		t.Fatalf("first AddPrompt: %v", err)
	}
	if err := s.AddPrompt(&Prompt{Name: "p"}, codReviewPromptHandler); err == nil {
		t.Fatal("second AddPrompt with the same name succeeded, want rejection")
	}
}

// TestNilHandlerRejected exercises the registration-time nil-handler checks
// on AddTool, AddResource, and AddPrompt.
func TestNilHandlerRejected(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)

	if err := s.AddTool(&Tool{Name: "t", InputSchema: &jsonschema.Schema{Type: "object"}}, nil); err == nil {
		t.Error("AddTool with a nil handler succeeded, want rejection")
	}
	if err := AddTool[map[string]any, any](s, &Tool{Name: "t2"}, nil); err == nil {
		t.Error("generic AddTool with a nil handler succeeded, want rejection")
	}
	if err := s.AddResource(&Resource{URI: "file:///b"}, nil); err == nil {
		t.Error("AddResource with a nil handler succeeded, want rejection")
	}
	if err := s.AddPrompt(&Prompt{Name: "p2"}, nil); err == nil {
		t.Error("AddPrompt with a nil handler succeeded, want rejection")
	}
}
