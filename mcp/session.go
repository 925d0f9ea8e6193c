// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// The session state machine (spec.md §4.5 / §5, component C5): Created ->
// Initializing -> Operational -> Closing -> Closed. A session owns one
// Connection, dispatches inbound requests and notifications, and correlates
// outbound calls with their responses through a Waiter per request ID.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/jsonrpc"
)

// defaultCallTimeout bounds an outbound call when the caller's context
// carries no deadline of its own (spec.md §4.6).
const defaultCallTimeout = 20 * time.Second

// ErrCallTimeout is returned by call when its default or caller-supplied
// deadline elapses before a response arrives.
var ErrCallTimeout = errors.New("call timed out")

// ErrCallCancelled is returned by call when its context is cancelled before
// a response arrives.
var ErrCallCancelled = errors.New("call cancelled")

type sessionState int32

const (
	stateCreated sessionState = iota
	stateInitializing
	stateOperational
	stateClosing
	stateClosed
)

// Waiter lets one goroutine block on the Response to a Request it sent,
// while the session's read loop, running on a different goroutine, delivers
// that Response whenever it arrives (spec.md Testable Property: exactly one
// waiter ever observes a given response ID).
type Waiter struct {
	ch chan *jsonrpc.Response
}

func newWaiter() *Waiter { return &Waiter{ch: make(chan *jsonrpc.Response, 1)} }

func (w *Waiter) deliver(resp *jsonrpc.Response) { w.ch <- resp }

func (w *Waiter) wait(ctx context.Context) (*jsonrpc.Response, error) {
	select {
	case resp := <-w.ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// baseSession holds the machinery shared by ServerSession and ClientSession:
// the connection, the outstanding-request table, and the read/dispatch
// loop. dispatch is supplied by the embedding type so requests route to
// server or client method tables respectively.
type baseSession struct {
	conn     Connection
	dispatch func(ctx context.Context, req *jsonrpc.Request)

	state atomic.Int32

	mu       sync.Mutex
	nextID   int64
	waiters  map[string]*Waiter
	closeErr error
	closed   chan struct{}

	// cancelFuncs and suppressed implement per-request cancellation
	// (spec.md §4.5/§5/§7): cancelFuncs holds the context.CancelFunc for
	// every inbound request currently dispatching, keyed by its ID string;
	// suppressed marks an ID whose notifications/cancelled arrived before
	// its handler finished, so respond drops the (possibly still-computed)
	// result instead of writing it.
	cancelFuncs map[string]context.CancelFunc
	suppressed  map[string]bool

	readDone chan struct{}
}

func newBaseSession(conn Connection) *baseSession {
	return &baseSession{
		conn:        conn,
		waiters:     make(map[string]*Waiter),
		closed:      make(chan struct{}),
		readDone:    make(chan struct{}),
		cancelFuncs: make(map[string]context.CancelFunc),
		suppressed:  make(map[string]bool),
	}
}

func (s *baseSession) getState() sessionState { return sessionState(s.state.Load()) }
func (s *baseSession) setState(st sessionState) { s.state.Store(int32(st)) }

// run starts the read loop. It returns once the connection is closed or ctx
// is done; the caller typically runs it in its own goroutine and waits on
// Wait/Close.
func (s *baseSession) run(ctx context.Context) error {
	defer close(s.readDone)
	for {
		msg, err := s.conn.Read(ctx)
		if err != nil {
			s.fail(err)
			return err
		}
		switch m := msg.(type) {
		case *jsonrpc.Response:
			s.deliver(m)
		case *jsonrpc.Request:
			if m.Method == "notifications/cancelled" {
				s.cancelInFlight(m)
				continue
			}
			s.dispatchRequest(ctx, m)
		}
	}
}

// dispatchRequest runs dispatch on its own goroutine, deriving a cancellable
// context for calls (requests with a valid ID) so an inbound
// notifications/cancelled can trip it (spec.md Scenario S4). The one
// exception is notifications/initialized, dispatched inline so the state
// change it makes is in place before any later message is dispatched.
func (s *baseSession) dispatchRequest(ctx context.Context, req *jsonrpc.Request) {
	if !req.ID.IsValid() {
		if req.Method == "notifications/initialized" {
			s.dispatch(ctx, req)
			return
		}
		go s.dispatch(ctx, req)
		return
	}
	reqCtx, cancel := context.WithCancel(ctx)
	key := req.ID.String()
	s.mu.Lock()
	s.cancelFuncs[key] = cancel
	s.mu.Unlock()
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancelFuncs, key)
			s.mu.Unlock()
			cancel()
		}()
		s.dispatch(reqCtx, req)
	}()
}

// cancelInFlight handles an inbound notifications/cancelled: it cancels the
// named request's context, if it is still in flight, and marks its ID
// suppressed so respond drops the eventual result instead of writing a
// response for a request the peer already gave up on.
func (s *baseSession) cancelInFlight(req *jsonrpc.Request) {
	var p CancelledParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return
	}
	key := cancelTargetKey(p.RequestID)
	s.mu.Lock()
	cancel, ok := s.cancelFuncs[key]
	if ok {
		s.suppressed[key] = true
	}
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// cancelTargetKey normalizes a CancelledParams.RequestID (decoded from JSON
// as string or float64) to the same string form jsonrpc.ID.String() uses for
// its int64/string Raw values, so it can be looked up in cancelFuncs.
func cancelTargetKey(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// deliver routes a Response to the Waiter registered for its ID, if any.
// Responses with no matching waiter (a late reply to a cancelled or timed
// out call) are dropped.
func (s *baseSession) deliver(resp *jsonrpc.Response) {
	s.mu.Lock()
	w, ok := s.waiters[resp.ID.String()]
	if ok {
		delete(s.waiters, resp.ID.String())
	}
	s.mu.Unlock()
	if ok {
		w.deliver(resp)
	}
}

// call sends a request and blocks for its response, correlating by ID
// (spec.md Testable Property: request/response correlation is unique and
// race-free under concurrent outstanding calls). Unless ctx already carries
// a deadline, call applies defaultCallTimeout (spec.md §4.6). If ctx is done
// before a response arrives, call tells the peer via notifications/cancelled
// and resolves with ErrCallTimeout or ErrCallCancelled (spec.md §5/§7).
func (s *baseSession) call(ctx context.Context, method string, params, result any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultCallTimeout)
		defer cancel()
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}
	s.mu.Lock()
	s.nextID++
	id := jsonrpc.NewID(s.nextID)
	w := newWaiter()
	s.waiters[id.String()] = w
	s.mu.Unlock()

	req := &jsonrpc.Request{ID: id, Method: method, Params: data}
	if err := s.conn.Write(ctx, req); err != nil {
		s.mu.Lock()
		delete(s.waiters, id.String())
		s.mu.Unlock()
		return err
	}
	resp, err := w.wait(ctx)
	if err != nil {
		s.mu.Lock()
		delete(s.waiters, id.String())
		s.mu.Unlock()
		s.cancelOutbound(id, method, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %q", ErrCallTimeout, method)
		}
		return fmt.Errorf("%w: %q: %v", ErrCallCancelled, method, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// cancelOutbound tells the peer to give up on id, best-effort, after a local
// call gives up waiting for its response. It uses a short background context
// of its own since the call's own context is already done.
func (s *baseSession) cancelOutbound(id jsonrpc.ID, method string, cause error) {
	notifyCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.notify(notifyCtx, "notifications/cancelled", &CancelledParams{
		RequestID: id.Raw,
		Reason:    fmt.Sprintf("%s: %v", method, cause),
	})
}

// notify sends a fire-and-forget notification (no ID, no response).
func (s *baseSession) notify(ctx context.Context, method string, params any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshaling params: %w", err)
	}
	return s.conn.Write(ctx, &jsonrpc.Request{Method: method, Params: data})
}

// respond writes the Response for a call, or does nothing for a
// notification (id.IsValid() == false): spec.md §4.4, notifications never
// get a reply, even an error one.
func (s *baseSession) respond(ctx context.Context, id jsonrpc.ID, result any, rpcErr error) {
	if !id.IsValid() {
		return
	}
	key := id.String()
	s.mu.Lock()
	if s.suppressed[key] {
		delete(s.suppressed, key)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	resp := &jsonrpc.Response{ID: id}
	if rpcErr != nil {
		var e *jsonrpc.Error
		if ok := asJSONRPCError(rpcErr, &e); ok {
			resp.Error = e
		} else {
			resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: rpcErr.Error()}
		}
	} else {
		data, err := json.Marshal(result)
		if err != nil {
			resp.Error = &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: err.Error()}
		} else {
			resp.Result = data
		}
	}
	_ = s.conn.Write(ctx, resp)
}

func asJSONRPCError(err error, target **jsonrpc.Error) bool {
	if e, ok := err.(*jsonrpc.Error); ok {
		*target = e
		return true
	}
	return false
}

// fail marks the session closed due to a read error and wakes every pending
// waiter with a CodeInternalError response whose message is
// ErrConnectionClosed's text, so no caller of call() blocks forever.
func (s *baseSession) fail(err error) {
	s.setState(stateClosed)
	s.mu.Lock()
	if s.closeErr == nil {
		s.closeErr = err
	}
	waiters := s.waiters
	s.waiters = make(map[string]*Waiter)
	s.mu.Unlock()
	for _, w := range waiters {
		w.deliver(&jsonrpc.Response{Error: &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: ErrConnectionClosed.Error()}})
	}
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// closeSession marks the session Closing, closes the connection, and marks
// the session Closed.
func (s *baseSession) closeSession() error {
	s.setState(stateClosing)
	err := s.conn.Close()
	s.setState(stateClosed)
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return err
}

func (s *baseSession) wait() error {
	<-s.readDone
	return s.closeErr
}
