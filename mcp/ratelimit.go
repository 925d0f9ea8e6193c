// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// ToolCallLimiter caps the rate of tools/call requests a session may issue,
// one token bucket per ServerSession, so a single misbehaving client can't
// starve the worker pool (component C4) for every other session.

package mcp

import (
	"sync"

	"golang.org/x/time/rate"
)

// ToolCallLimiter rate-limits tools/call dispatch per ServerSession.
type ToolCallLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[*ServerSession]*rate.Limiter
}

// NewToolCallLimiter returns a ToolCallLimiter allowing rps calls per second
// per session, with a bucket of burst calls that can be spent at once. A
// burst of zero or less is treated as 1.
func NewToolCallLimiter(rps float64, burst int) *ToolCallLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &ToolCallLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[*ServerSession]*rate.Limiter),
	}
}

// Allow reports whether ss may make a tools/call request now, consuming a
// token from its bucket if so.
func (l *ToolCallLimiter) Allow(ss *ServerSession) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ss]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ss] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// forget drops ss's bucket, called once its session closes so the map
// doesn't grow without bound across reconnects.
func (l *ToolCallLimiter) forget(ss *ServerSession) {
	l.mu.Lock()
	delete(l.limiters, ss)
	l.mu.Unlock()
}
