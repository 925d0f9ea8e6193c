// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"testing"

	"github.com/corewire/mcp-go/internal/json"
)

// TestCallToolResultRoundTrip exercises the UnmarshalJSON method that
// decodes the wire content array back into concrete Content values: a bare
// Content interface field cannot be decoded by the standard library without
// this indirection through wireContent.
func TestCallToolResultRoundTrip(t *testing.T) {
	want := &CallToolResult{
		Content: []Content{&TextContent{Text: "hi"}},
		IsError: true,
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got CallToolResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.IsError {
		t.Error("IsError lost across round trip")
	}
	if len(got.Content) != 1 {
		t.Fatalf("Content = %v, want 1 element", got.Content)
	}
	text, ok := got.Content[0].(*TextContent)
	if !ok {
		t.Fatalf("Content[0] = %T, want *TextContent", got.Content[0])
	}
	if text.Text != "hi" {
		t.Errorf("Text = %q, want %q", text.Text, "hi")
	}
}

// TestPromptMessageRoundTrip exercises PromptMessage's single (non-slice)
// Content field.
func TestPromptMessageRoundTrip(t *testing.T) {
	want := &PromptMessage{Role: RoleUser, Content: &TextContent{Text: "review this"}}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got PromptMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	text, ok := got.Content.(*TextContent)
	if !ok {
		t.Fatalf("Content = %T, want *TextContent", got.Content)
	}
	if text.Text != "review this" {
		t.Errorf("Text = %q, want %q", text.Text, "review this")
	}
}

// TestCreateMessageResultRoundTrip exercises CreateMessageResult's Content
// field alongside its other scalar fields.
func TestCreateMessageResultRoundTrip(t *testing.T) {
	want := &CreateMessageResult{
		Role:       RoleAssistant,
		Content:    &TextContent{Text: "answer"},
		Model:      "test-model",
		StopReason: "endTurn",
	}
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got CreateMessageResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Model != "test-model" || got.StopReason != "endTurn" {
		t.Errorf("Model/StopReason = %q/%q, want %q/%q", got.Model, got.StopReason, "test-model", "endTurn")
	}
	text, ok := got.Content.(*TextContent)
	if !ok {
		t.Fatalf("Content = %T, want *TextContent", got.Content)
	}
	if text.Text != "answer" {
		t.Errorf("Text = %q, want %q", text.Text, "answer")
	}
}
