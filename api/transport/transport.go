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

// Package transport defines the contracts between transports, the dispatcher
// and service handlers.
//
// A transport accumulates an incoming request until it is fully formed, then
// hands it to the dispatcher as a ServerRPC. The dispatcher routes it to a
// registered Handler, which runs on a worker goroutine with an RPC view of
// the request and reply payloads. The dispatcher invokes SendReply exactly
// once, after the handler has finished with the reply (or signalled early
// completion through RPC.SendReply).
package transport

import "bytes"

// ServerRPC is one incoming remote procedure call, owned by the transport
// that received it. At any instant the RPC is held by exactly one of: the
// transport, the dispatcher's admission queue, a worker, or the dispatcher's
// reply path.
type ServerRPC interface {
	// Request returns the fully formed request payload. It is read-only for
	// the lifetime of the RPC.
	Request() []byte

	// Response returns the reply payload under construction. Handlers only
	// append to it.
	Response() *bytes.Buffer

	// SendReply transmits the accumulated reply back to the client. It is
	// invoked exactly once per RPC, by the dispatch thread.
	SendReply()

	// Epoch returns the lifetime-tracking stamp the transport assigned to
	// the RPC. Zero means the transport failed to stamp it; the dispatcher
	// refuses such requests.
	Epoch() uint64
}

// Replier lets a handler signal that the reply for the RPC it is servicing
// may be sent before the handler returns.
type Replier interface {
	SendReply()
}

// Handler services RPCs for one registered service. Handlers may block, and
// run concurrently with one another up to the concurrency cap their service
// was registered with. They must not touch the dispatcher's internal state.
type Handler interface {
	HandleRPC(rpc *RPC)
}

// RPC is the view of a request handed to a Handler.
type RPC struct {
	replier Replier

	// Request is the request payload, including the common header.
	Request []byte

	// Response is the reply payload; append only.
	Response *bytes.Buffer
}

// NewRPC builds the handler view of a request. replier may be nil when the
// caller has no use for early replies (as in direct handler tests).
func NewRPC(replier Replier, request []byte, response *bytes.Buffer) *RPC {
	return &RPC{replier: replier, Request: request, Response: response}
}

// SendReply tells the dispatcher that the reply is complete and may be sent
// even though the handler has not returned yet. Call it at most once, and
// do not touch Response afterwards.
func (r *RPC) SendReply() {
	if r.replier != nil {
		r.replier.SendReply()
	}
}
