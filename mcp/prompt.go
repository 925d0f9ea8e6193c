// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Prompt declaration and registration (spec.md §4.2, component C3).

package mcp

import "context"

// Prompt is a reusable, name-addressed prompt template the server exposes
// (spec.md §4.2 Data Model).
type Prompt struct {
	Name        string            `json:"name"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Arguments   []*PromptArgument `json:"arguments,omitempty"`
	Icons       []Icon            `json:"icons,omitempty"`
	Meta        Meta              `json:"_meta,omitempty"`
}

// PromptHandler renders the prompt named by req.Params.Name, filling its
// template with req.Params.Arguments.
type PromptHandler func(ctx context.Context, req *ServerRequest[*GetPromptParams]) (*GetPromptResult, error)

// serverPrompt binds a Prompt declaration to its handler.
type serverPrompt struct {
	prompt  *Prompt
	handler PromptHandler
}
