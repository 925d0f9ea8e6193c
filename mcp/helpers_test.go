// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"
)

// basicConnection builds a Server configured by configure, connects it over
// an in-memory transport pair, and returns the resulting ClientSession
// already past the initialize handshake, plus the Server itself and a
// cleanup func that closes both ends.
func basicConnection(t *testing.T, configure func(*Server)) (*ClientSession, *Server, func()) {
	t.Helper()
	server := NewServer(&Implementation{Name: "test-server", Version: "v0.0.1"}, nil)
	if configure != nil {
		configure(server)
	}

	ctx := context.Background()
	clientTransport, serverTransport := NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	client := NewClient(&Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	return cs, server, func() {
		cs.Close()
		ss.Close()
	}
}

// codeReviewPrompt and codReviewPromptHandler are a minimal sample prompt
// reused by several tests that just need some prompt registered.
var codeReviewPrompt = &Prompt{
	Name:        "code_review",
	Description: "Reviews a code change",
	Arguments: []*PromptArgument{
		{Name: "diff", Description: "unified diff to review", Required: true},
	},
}

func codReviewPromptHandler(ctx context.Context, req *GetPromptRequest) (*GetPromptResult, error) {
	return &GetPromptResult{
		Description: "Code review prompt",
		Messages: []*PromptMessage{
			{Role: "user", Content: &TextContent{Text: "Review this diff:\n" + req.Params.Arguments["diff"]}},
		},
	}, nil
}
