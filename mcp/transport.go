// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Transport and Connection (spec.md §4.4, component C2): the boundary
// between a session and the bytes that carry its JSON-RPC envelopes. Each
// Connection carries newline-delimited JSON-RPC messages; batching was part
// of an earlier protocol revision and has no home in LatestProtocolVersion.

package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/corewire/mcp-go/internal/json"
	"github.com/corewire/mcp-go/jsonrpc"
)

// ErrConnectionClosed is returned by Connection.Read and Connection.Write
// once Close has been called, or once the peer has gone away.
var ErrConnectionClosed = errors.New("connection closed")

// Transport connects to a logical JSON-RPC peer, producing the Connection a
// session reads and writes envelopes through.
type Transport interface {
	Connect(ctx context.Context) (Connection, error)
}

// Connection is a bidirectional, newline-delimited stream of JSON-RPC
// messages.
type Connection interface {
	Read(ctx context.Context) (jsonrpc.Message, error)
	Write(ctx context.Context, msg jsonrpc.Message) error
	Close() error
}

// ioConn frames jsonrpc.Message values as newline-delimited JSON over an
// io.ReadWriteCloser (spec.md's stdio transport: one JSON value per line).
type ioConn struct {
	wmu sync.Mutex
	rwc io.ReadWriteCloser
	r   *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

func newIOConn(rwc io.ReadWriteCloser) *ioConn {
	return &ioConn{rwc: rwc, r: bufio.NewReader(rwc)}
}

func (c *ioConn) Read(ctx context.Context) (jsonrpc.Message, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			if errors.Is(err, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
		// A final line with no trailing newline is still valid input.
	}
	return jsonrpc.DecodeMessage(line)
}

func (c *ioConn) Write(ctx context.Context, msg jsonrpc.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	data = append(data, '\n')
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err = c.rwc.Write(data)
	return err
}

func (c *ioConn) Close() error {
	c.closeOnce.Do(func() { c.closeErr = c.rwc.Close() })
	return c.closeErr
}

// rwc pairs an io.ReadCloser and io.Writer into an io.ReadWriteCloser, for
// composing a stdio transport out of os.Stdin and os.Stdout.
type rwc struct {
	rc io.ReadCloser
	w  io.Writer
}

func (x rwc) Read(p []byte) (int, error)  { return x.rc.Read(p) }
func (x rwc) Write(p []byte) (int, error) { return x.w.Write(p) }
func (x rwc) Close() error                { return x.rc.Close() }

// StdioTransport connects over the process's standard input and output,
// the transport a CLI-hosted MCP server or client normally uses.
type StdioTransport struct {
	In  io.ReadCloser
	Out io.Writer
}

func (t *StdioTransport) Connect(ctx context.Context) (Connection, error) {
	return newIOConn(rwc{t.In, t.Out}), nil
}

// inMemoryTransport is one end of a connected pair of in-process
// Connections, used for tests and for embedding a server in its own
// client's process. Closing either end is signaled through done, never by
// closing ch, so a send racing a close never panics.
type inMemoryTransport struct {
	ch   chan jsonrpc.Message
	done chan struct{}
	peer *inMemoryTransport

	closeOnce sync.Once
}

// NewInMemoryTransports returns a connected pair of transports: messages
// written to one are read from the other.
func NewInMemoryTransports() (client, server Transport) {
	a := &inMemoryTransport{ch: make(chan jsonrpc.Message, 16), done: make(chan struct{})}
	b := &inMemoryTransport{ch: make(chan jsonrpc.Message, 16), done: make(chan struct{})}
	a.peer, b.peer = b, a
	return a, b
}

func (t *inMemoryTransport) Connect(ctx context.Context) (Connection, error) {
	return t, nil
}

func (t *inMemoryTransport) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case msg := <-t.ch:
		return msg, nil
	case <-t.done:
		return nil, ErrConnectionClosed
	case <-t.peer.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *inMemoryTransport) Write(ctx context.Context, msg jsonrpc.Message) error {
	select {
	case t.peer.ch <- msg:
		return nil
	case <-t.done:
		return ErrConnectionClosed
	case <-t.peer.done:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *inMemoryTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
