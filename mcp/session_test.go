// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/jsonrpc"
)

// marshalT marshals v with the same encoder the session layer uses, failing
// the test on error rather than returning one, to keep call sites terse.
func marshalT(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling %T: %v", v, err)
	}
	return data
}

// TestCallCorrelation exercises Inv.1: concurrent outstanding calls each get
// the response matching their own request, even when handlers complete out
// of submission order.
func TestCallCorrelation(t *testing.T) {
	type sleepArgs struct {
		Ms  int    `json:"ms"`
		Tag string `json:"tag"`
	}
	handler := func(ctx context.Context, req *CallToolRequest, args sleepArgs) (*CallToolResult, any, error) {
		time.Sleep(time.Duration(args.Ms) * time.Millisecond)
		return &CallToolResult{Content: []Content{&TextContent{Text: args.Tag}}}, nil, nil
	}
	cs, s, cleanup := basicConnection(t, func(s *Server) {
		if err := AddTool(s, &Tool{Name: "sleep"}, handler); err != nil {
			t.Fatal(err)
		}
	})
	defer cleanup()
	_ = s

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := fmt.Sprintf("tag-%d", i)
			res, err := cs.CallTool(context.Background(), &CallToolParams{
				Name:      "sleep",
				Arguments: marshalT(t, map[string]any{"ms": (n - i) % 5, "tag": tag}),
			})
			if err != nil {
				t.Errorf("call %d: %v", i, err)
				return
			}
			got := res.Content[0].(*TextContent).Text
			if got != tag {
				t.Errorf("call %d: got response tag %q, want %q (correlation broken)", i, got, tag)
			}
		}(i)
	}
	wg.Wait()
}

// TestBroadcastOrderMatchesRegistration exercises Inv.3: notification
// fan-out iterates sessions in the order they were connected.
func TestBroadcastOrderMatchesRegistration(t *testing.T) {
	s := NewServer(&Implementation{Name: "s", Version: "v1"}, nil)
	ctx := context.Background()

	var want []*ServerSession
	for i := 0; i < 4; i++ {
		_, serverTransport := NewInMemoryTransports()
		ss, err := s.Connect(ctx, serverTransport, nil)
		if err != nil {
			t.Fatalf("Connect %d: %v", i, err)
		}
		want = append(want, ss)
	}

	s.mu.Lock()
	got := append([]*ServerSession(nil), s.sessionOrder...)
	s.mu.Unlock()

	if len(got) != len(want) {
		t.Fatalf("sessionOrder has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sessionOrder[%d] = %p, want %p (registration order not preserved)", i, got[i], want[i])
		}
	}
}

// TestCallDeadlineTimeout exercises the outbound call path when the caller's
// own deadline elapses before any response arrives: call gives up with
// ErrCallTimeout. The defaultCallTimeout fallback, applied only to contexts
// without a deadline, is not exercised here.
func TestCallDeadlineTimeout(t *testing.T) {
	ctx := context.Background()
	// Nothing reads the other end of the pair, so no reply ever arrives.
	clientTransport, _ := NewInMemoryTransports()

	conn, err := clientTransport.Connect(ctx)
	if err != nil {
		t.Fatalf("clientTransport.Connect: %v", err)
	}
	base := newBaseSession(conn)
	base.dispatch = func(context.Context, *jsonrpc.Request) {}
	go base.run(ctx)
	defer base.closeSession()

	shortCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	// No peer replies to "never/responds", so call gives up when shortCtx's
	// deadline elapses; shortCtx has a deadline, so defaultCallTimeout is not
	// applied.
	err = base.call(shortCtx, "never/responds", &PingParams{}, nil)
	if !errors.Is(err, ErrCallTimeout) {
		t.Fatalf("call() error = %v, want wrapping ErrCallTimeout", err)
	}
}

// TestCallCancelledByCaller exercises the outbound-cancel path when the
// caller cancels its own context before a response arrives.
func TestCallCancelledByCaller(t *testing.T) {
	cs, _, cleanup := basicConnection(t, func(s *Server) {
		block := make(chan struct{})
		t.Cleanup(func() { close(block) })
		h := func(ctx context.Context, req *CallToolRequest, args map[string]any) (*CallToolResult, any, error) {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return &CallToolResult{Content: []Content{&TextContent{Text: "done"}}}, nil, nil
		}
		if err := AddTool(s, &Tool{Name: "block"}, h); err != nil {
			t.Fatal(err)
		}
	})
	defer cleanup()

	callCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cs.CallTool(callCtx, &CallToolParams{Name: "block", Arguments: marshalT(t, map[string]any{})})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrCallCancelled) {
			t.Fatalf("CallTool error = %v, want wrapping ErrCallCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("CallTool did not return after its context was cancelled")
	}
}

// TestInboundCancellation exercises Scenario S4: the client cancels an
// in-flight tools/call; the server's handler observes ctx.Done and no
// response is written for that request id.
func TestInboundCancellation(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	h := func(ctx context.Context, req *CallToolRequest, args map[string]any) (*CallToolResult, any, error) {
		close(started)
		select {
		case <-ctx.Done():
			close(cancelled)
		case <-time.After(5 * time.Second):
		}
		return &CallToolResult{Content: []Content{&TextContent{Text: "too late"}}}, nil, nil
	}

	server := NewServer(&Implementation{Name: "s", Version: "v1"}, &ServerOptions{ImmediateExecution: true})
	if err := AddTool(server, &Tool{Name: "slow"}, h); err != nil {
		t.Fatal(err)
	}

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

	// Minimal hand-rolled handshake: the test drives the wire directly so it
	// can send notifications/cancelled itself.
	id := jsonrpc.NewID(int64(1))
	mustWrite(t, ctx, conn, &jsonrpc.Request{ID: id, Method: "initialize", Params: marshalT(t, &InitializeParams{
		ProtocolVersion: LatestProtocolVersion,
		ClientInfo:      &Implementation{Name: "c", Version: "v1"},
		Capabilities:    &ClientCapabilities{},
	})})
	mustRead(t, ctx, conn) // initialize response
	mustWrite(t, ctx, conn, &jsonrpc.Request{Method: "notifications/initialized"})

	callID := jsonrpc.NewID(int64(2))
	mustWrite(t, ctx, conn, &jsonrpc.Request{ID: callID, Method: "tools/call", Params: marshalT(t, &CallToolParams{
		Name:      "slow",
		Arguments: marshalT(t, map[string]any{}),
	})})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never started")
	}

	mustWrite(t, ctx, conn, &jsonrpc.Request{Method: "notifications/cancelled", Params: marshalT(t, &CancelledParams{
		RequestID: float64(2),
	})})

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler's context was never cancelled")
	}

	// No response should ever arrive for callID: reading again should time
	// out, not yield a late response.
	readCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if _, err := conn.Read(readCtx); err == nil {
		t.Fatal("expected no response to be written for a cancelled request, got one")
	}
}

func mustWrite(t *testing.T, ctx context.Context, conn Connection, msg jsonrpc.Message) {
	t.Helper()
	if err := conn.Write(ctx, msg); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func mustRead(t *testing.T, ctx context.Context, conn Connection) jsonrpc.Message {
	t.Helper()
	msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return msg
}
