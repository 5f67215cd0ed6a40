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

package silo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silokv/silo/api/transport"
)

func waitForState(t *testing.T, w *worker, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.state.Load() != want {
		require.True(t, time.Now().Before(deadline), "worker never reached state %d", want)
		w.d.Poll()
		time.Sleep(50 * time.Microsecond)
	}
}

func TestWorkerHandoffRunsHandler(t *testing.T) {
	d := newTestDispatcher(t, Config{})

	handled := make(chan []byte, 1)
	w := newWorker(d)
	w.service = &serviceInfo{
		handler: handlerFunc(func(rpc *transport.RPC) {
			handled <- append([]byte(nil), rpc.Request[transport.RequestHeaderSize:]...)
		}),
		tag:        transport.MasterService,
		maxThreads: 1,
	}

	rpc := newTestRPC(transport.MasterService, transport.OpWrite, []byte("hello"))
	w.handoff(workItem{rpc: rpc})

	assert.Equal(t, []byte("hello"), <-handled)
	waitForState(t, w, statePolling)

	w.exit()
	assert.True(t, w.exited)
}

func TestWorkerEarlyReplyStates(t *testing.T) {
	d := newTestDispatcher(t, Config{})

	release := make(chan struct{})
	signalled := make(chan struct{})
	w := newWorker(d)
	w.service = &serviceInfo{
		handler: handlerFunc(func(rpc *transport.RPC) {
			rpc.SendReply()
			close(signalled)
			<-release
		}),
		tag:        transport.MasterService,
		maxThreads: 1,
	}

	w.handoff(workItem{rpc: newTestRPC(transport.MasterService, transport.OpRead, nil)})
	<-signalled
	assert.Equal(t, statePostprocessing, w.state.Load())

	close(release)
	waitForState(t, w, statePolling)
	w.exit()
}

func TestWorkerExitFromSleep(t *testing.T) {
	d := newTestDispatcher(t, Config{PollBudget: 100 * time.Microsecond})

	w := newWorker(d)
	w.service = &serviceInfo{handler: okHandler{}, tag: transport.PingService, maxThreads: 1}

	// Let the worker run out of poll budget and park, then order it out;
	// the exit handoff must wake it.
	waitForState(t, w, stateSleeping)
	w.exit()
	assert.True(t, w.exited)
}

func TestWorkerExitIsIdempotent(t *testing.T) {
	d := newTestDispatcher(t, Config{})

	w := newWorker(d)
	w.service = &serviceInfo{handler: okHandler{}, tag: transport.PingService, maxThreads: 1}
	w.exit()
	w.exit()
	assert.True(t, w.exited)
}
