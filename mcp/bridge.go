// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// The sync/async bridge (spec.md §4.4, component C4). A session's read loop
// decodes one envelope at a time; handing a request straight to a blocking
// handler on that goroutine would stall every other in-flight request and
// all outbound notifications. fromSync offloads the call onto a bounded
// worker pool instead, unless the handler opts into running inline.

package mcp

import "context"

// defaultWorkers bounds concurrent blocking handler invocations per Server,
// across all of its sessions.
// MCP tool/resource/prompt handlers are assumed I/O-bound (file reads,
// outbound HTTP, subprocess calls), so a modest worker count amortizes well
// without starving the transport's Write goroutine of CPU.
const defaultWorkers = 16

// workerPool is a bounded semaphore for running blocking work off the
// session's read goroutine.
type workerPool struct {
	tokens chan struct{}
}

func newWorkerPool(n int) *workerPool {
	if n <= 0 {
		n = defaultWorkers
	}
	return &workerPool{tokens: make(chan struct{}, n)}
}

// run blocks until a worker slot is available or ctx is done, then invokes
// fn on a fresh goroutine and waits for it to finish or for ctx to be done.
// The slot stays taken until fn returns, even after run stops waiting. A
// panic in fn happens on that fresh goroutine, where neither run nor its
// caller can recover it.
func (p *workerPool) run(ctx context.Context, fn func() (*CallToolResult, error)) (*CallToolResult, error) {
	select {
	case p.tokens <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type result struct {
		res *CallToolResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() { <-p.tokens }()
		res, err := fn()
		done <- result{res, err}
	}()
	select {
	case r := <-done:
		return r.res, r.err
	case <-ctx.Done():
		// The goroutine above still runs to completion and releases its
		// token; we just stop waiting for it.
		return nil, ctx.Err()
	}
}

// fromSync wraps a synchronous ToolHandler so it runs on pool rather than on
// whatever goroutine calls it, unless immediateExecution is true (the
// handler has already declared itself non-blocking, e.g. it only touches an
// in-memory map). A nil handler is a registration error, not a silent
// pass-through: spec.md leaves "nil sync handler" as an open question,
// resolved here by rejecting it at AddTool time rather than panicking on the
// first call.
func fromSync(pool *workerPool, h ToolHandler, immediateExecution bool) ToolHandler {
	if immediateExecution {
		return h
	}
	return func(ctx context.Context, req *ServerRequest[*CallToolParams], args any) (*CallToolResult, error) {
		return pool.run(ctx, func() (*CallToolResult, error) {
			return h(ctx, req, args)
		})
	}
}
