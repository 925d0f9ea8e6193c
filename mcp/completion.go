// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Completion declaration and registration (spec.md §4.3, component C3).

package mcp

import "context"

// CompletionHandler returns candidate completions for one argument of a
// prompt or resource template identified by req.Params.Ref.
type CompletionHandler func(ctx context.Context, req *ServerRequest[*CompleteParams]) (*CompleteResult, error)

// serverCompletion binds a CompleteReference to its handler.
type serverCompletion struct {
	ref     *CompleteReference
	handler CompletionHandler
}
