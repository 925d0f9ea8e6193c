// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// TestWorkerPoolBound exercises Inv.4: the sync/async bridge never runs more
// than its configured number of blocking handlers concurrently, even when
// more callers are waiting.
func TestWorkerPoolBound(t *testing.T) {
	const limit = 3
	pool := newWorkerPool(limit)

	var current, peak atomic.Int32
	release := make(chan struct{})

	const callers = 10
	done := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, _ = pool.run(context.Background(), func() (*CallToolResult, error) {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				<-release
				current.Add(-1)
				return nil, nil
			})
			done <- struct{}{}
		}()
	}

	// Give every goroutine a chance to reach the pool before releasing any
	// work, so peak reflects genuine contention rather than scheduling luck.
	time.Sleep(100 * time.Millisecond)
	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrent handlers = %d, want <= %d", got, limit)
	}
	close(release)

	for i := 0; i < callers; i++ {
		<-done
	}
	if got := peak.Load(); got == 0 || got > limit {
		t.Errorf("peak concurrent handlers = %d, want in (0, %d]", got, limit)
	}
}

// TestFromSyncImmediateExecution exercises the ImmediateExecution escape
// hatch: the handler runs on the calling goroutine, not through the pool.
func TestFromSyncImmediateExecution(t *testing.T) {
	pool := newWorkerPool(1)
	// Take the pool's only slot, so a call routed through the pool could not
	// start before ctx's deadline.
	pool.tokens <- struct{}{}
	defer func() { <-pool.tokens }()
	callerGoroutine := make(chan bool, 1)
	h := func(ctx context.Context, req *ServerRequest[*CallToolParams], args any) (*CallToolResult, error) {
		callerGoroutine <- true
		return &CallToolResult{}, nil
	}
	wrapped := fromSync(pool, h, true)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := wrapped(ctx, &ServerRequest[*CallToolParams]{Params: &CallToolParams{}}, nil)
	if err != nil {
		t.Fatalf("wrapped handler: %v", err)
	}
	select {
	case <-callerGoroutine:
	default:
		t.Fatal("handler never ran")
	}
}
