// Copyright (c) 2025 The silo Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package bind provides an in-process transport that injects RPCs directly
// into a server's dispatcher, so the dispatch core and its handlers can be
// exercised end to end without a network, sockets or timers.
package bind

import (
	"bytes"
	"fmt"

	"go.uber.org/atomic"

	"github.com/silokv/silo"
	"github.com/silokv/silo/api/transport"
	"github.com/silokv/silo/internal/bufferpool"
)

// Transport maps locator names to in-process servers. The caller that owns
// the servers' dispatch threads must also be the one sending through this
// transport: every call runs on the calling goroutine.
type Transport struct {
	servers map[string]*silo.Dispatcher

	// epoch stamps outgoing requests; the dispatcher requires a non-zero
	// stamp on every RPC.
	epoch atomic.Uint64
}

// New returns an empty bind transport.
func New() *Transport {
	return &Transport{servers: make(map[string]*silo.Dispatcher)}
}

// AddServer registers a dispatcher under a locator name. Startup-only: the
// map is read, never written, once requests flow.
func (t *Transport) AddServer(name string, d *silo.Dispatcher) {
	t.servers[name] = d
}

// Send builds an in-flight call carrying request to the named server. The
// request is not delivered until Start or Wait is invoked on the returned
// ClientRPC.
func (t *Transport) Send(server string, request []byte) (*ClientRPC, error) {
	d, ok := t.servers[server]
	if !ok {
		return nil, fmt.Errorf("bind: no server registered as %q", server)
	}
	return &ClientRPC{
		d: d,
		rpc: &serverRPC{
			request:  append([]byte(nil), request...),
			response: bufferpool.Get(),
			epoch:    t.epoch.Inc(),
		},
	}, nil
}

// ClientRPC is one call in flight through the bind transport.
type ClientRPC struct {
	d     *silo.Dispatcher
	rpc   *serverRPC
	sent  bool
	reply []byte
}

// Start injects the request into the server's dispatcher without driving
// the dispatch loop, so several calls can be put in flight back to back.
// Returns the ClientRPC for chaining.
func (c *ClientRPC) Start() *ClientRPC {
	if !c.sent {
		c.sent = true
		c.d.HandleRPC(c.rpc)
	}
	return c
}

// Done reports whether the server has sent the reply.
func (c *ClientRPC) Done() bool {
	return c.rpc.replied
}

// Wait delivers the request if Start has not already, then drives the
// server's dispatch loop until the reply has been sent, and returns a copy
// of the reply payload.
func (c *ClientRPC) Wait() []byte {
	if c.rpc.response == nil {
		return c.reply
	}
	c.Start()
	for !c.rpc.replied {
		c.d.Poll()
	}
	c.reply = append([]byte(nil), c.rpc.response.Bytes()...)
	bufferpool.Put(c.rpc.response)
	c.rpc.response = nil
	return c.reply
}

// serverRPC is the server-side view of a bind call.
type serverRPC struct {
	request  []byte
	response *bytes.Buffer
	epoch    uint64
	replied  bool
}

var _ transport.ServerRPC = (*serverRPC)(nil)

func (r *serverRPC) Request() []byte         { return r.request }
func (r *serverRPC) Response() *bytes.Buffer { return r.response }
func (r *serverRPC) Epoch() uint64           { return r.epoch }

// SendReply records that the reply is complete. The dispatcher calls it
// exactly once; a second call is a dispatcher bug and panics.
func (r *serverRPC) SendReply() {
	if r.replied {
		panic("bind: reply sent twice for one RPC")
	}
	r.replied = true
}
