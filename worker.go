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
	"runtime"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"github.com/silokv/silo/api/transport"
	"github.com/silokv/silo/internal/park"
)

// Worker states, advertised through the park cell.
const (
	// statePolling: idle, spinning on the cell looking for work.
	statePolling int32 = iota
	// stateWorking: an RPC has been handed off and the handler is running.
	stateWorking
	// statePostprocessing: the handler signalled that the reply may go out,
	// but has not returned yet.
	statePostprocessing
	// stateSleeping: the worker has parked waiting to be woken.
	stateSleeping
)

// workItem is what a handoff carries: an RPC to service, or an order to
// exit.
type workItem struct {
	rpc  transport.ServerRPC
	exit bool
}

// worker owns one handler goroutine. The dispatch thread shares it with that
// goroutine only through the state cell and the work item slot; everything
// else is dispatch-thread bookkeeping.
type worker struct {
	d *Dispatcher

	state *park.Cell

	// item is written by the dispatch thread only while the worker is
	// POLLING or SLEEPING, so the worker is guaranteed not to be reading
	// it; the Swap to WORKING publishes the write.
	item workItem

	// service is the entry this worker is currently bound to. Set by the
	// dispatch thread before handoff.
	service *serviceInfo

	// busyIndex is this worker's position in the dispatcher's busy list, or
	// -1 when idle.
	busyIndex int

	exited bool

	done chan struct{}
}

var _ transport.Replier = (*worker)(nil)

// newWorker creates a worker and starts its goroutine. Workers are created
// on demand and live until the dispatcher shuts down; the pool never
// shrinks.
func newWorker(d *Dispatcher) *worker {
	w := &worker{
		d:         d,
		state:     park.NewCell(statePolling),
		busyIndex: -1,
		done:      make(chan struct{}),
	}
	go w.main()
	return w
}

// main is the top-level loop of the worker goroutine: wait for the dispatch
// thread to hand over an RPC, service it, and report completion through the
// state cell.
func (w *worker) main() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			// A handler failure leaves the RPC without a committed reply;
			// there is no way to recover it, so log and take the process
			// down.
			w.d.logger.Error("worker: handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			panic(r)
		}
	}()

	budget := w.d.pollBudget.Nanoseconds()
	for {
		stopPolling := w.d.dispatchNanos.Load() + budget

		// Wait for the dispatch thread to supply some work.
		for w.state.Load() != stateWorking {
			if w.d.dispatchNanos.Load() >= stopPolling {
				// It's been a long time since we've had anything to do;
				// park so we stop burning CPU. Tricky race: the dispatch
				// thread could raise the state to WORKING just before we
				// store SLEEPING, so only transition if the cell still
				// reads POLLING, and let Park re-check the value before
				// blocking. A spurious return re-enters this loop.
				if w.state.CompareAndSwap(statePolling, stateSleeping) {
					w.state.Park(stateSleeping)
				}
			}
			runtime.Gosched()
		}

		item := w.item
		if item.exit {
			return
		}

		w.handle(item.rpc)

		// Hand the RPC back to the dispatch thread for completion. If the
		// handler already sent an early reply, the POSTPROCESSING store was
		// the commit and this store releases the worker; either way the
		// dispatch thread reacts to the first non-WORKING state it sees.
		w.state.Store(statePolling)
	}
}

// handle runs the service handler for one RPC under a tracing span.
func (w *worker) handle(rpc transport.ServerRPC) {
	hdr, _ := transport.ParseRequestHeader(rpc.Request())
	span := w.d.tracer.StartSpan("silo.dispatch.handle", opentracing.Tags{
		"rpc.service": hdr.Service.String(),
		"rpc.opcode":  hdr.Opcode.String(),
	})
	defer span.Finish()

	w.service.handler.HandleRPC(transport.NewRPC(w, rpc.Request(), rpc.Response()))
}

// handoff passes a work item to this worker and commits the transfer by
// raising the state cell to WORKING. Dispatch thread only; the worker must
// be POLLING or SLEEPING.
func (w *worker) handoff(item workItem) {
	w.item = item
	prev := w.state.Swap(stateWorking)
	if prev == stateSleeping {
		// The worker got tired of polling and parked; wake it. Any store
		// the worker makes from here on finds the state already WORKING,
		// so an unconditional wake is safe.
		w.state.Unpark()
	}
}

// SendReply implements transport.Replier: the handler's signal that the
// reply for the RPC currently being serviced may be sent before the handler
// returns. Worker goroutine only, at most once per RPC.
func (w *worker) SendReply() {
	w.state.Store(statePostprocessing)
}

// exit forces the worker's goroutine to terminate and waits until it has.
// Dispatch thread only; used during shutdown and in tests. Idempotent.
func (w *worker) exit() {
	if w.exited {
		return
	}

	// Let the worker finish whatever was already handed to it.
	for w.busyIndex >= 0 {
		w.d.Poll()
	}

	w.handoff(workItem{exit: true})
	<-w.done
	w.item = workItem{}
	w.exited = true
}
