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
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/silokv/silo/api/transport"
	"github.com/silokv/silo/internal/clock"
	isync "github.com/silokv/silo/internal/sync"
)

// serviceInfo tracks a registered service: its handler, its concurrency
// budget, and the requests waiting for a slot.
type serviceInfo struct {
	handler    transport.Handler
	tag        transport.ServiceType
	maxThreads int

	// requestsRunning is the number of workers currently bound to this
	// service. When it reaches maxThreads, new arrivals queue in
	// waitingRPCs; the queue is non-empty only at the cap.
	requestsRunning int
	waitingRPCs     []transport.ServerRPC
}

// Dispatcher accepts fully formed RPCs from transports, routes them to
// registered services, and drives the worker pool that executes them while
// the dispatch thread stays free to keep polling the network.
//
// Except where noted, every method must be called on the dispatch thread:
// the goroutine that owns the dispatch loop and invokes Poll on every tick.
type Dispatcher struct {
	logger *zap.Logger
	tracer opentracing.Tracer
	clock  clock.Clock
	obs    *observer

	pollBudget time.Duration

	// dispatchNanos is the dispatch thread's view of the current time,
	// refreshed on each HandleRPC and Poll. Workers measure their poll
	// budget against it.
	dispatchNanos atomic.Int64

	// services is indexed by service tag. Registration is startup-only, so
	// the table is read-only once requests flow.
	services     [transport.MaxService + 1]*serviceInfo
	serviceCount int

	// busyThreads holds the workers currently bound to an RPC; each worker's
	// busyIndex is its position here. idleThreads holds the rest.
	busyThreads []*worker
	idleThreads []*worker

	// testRPCs collects unrouted requests when no services are registered;
	// WaitForRPC consumes it.
	testRPCs []transport.ServerRPC

	life isync.LifecycleOnce
}

// NewDispatcher builds a Dispatcher from the given Config.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	cfg = cfg.withDefaults()

	obs, err := newObserver(cfg.Meter, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("dispatcher metrics: %w", err)
	}

	d := &Dispatcher{
		logger:     cfg.Logger.Named("dispatch").With(zap.String("server", cfg.Name)),
		tracer:     cfg.Tracer,
		clock:      cfg.Clock,
		obs:        obs,
		pollBudget: cfg.PollBudget,
	}
	d.observeNow()
	_ = d.life.Start(func() error { return nil })
	return d, nil
}

// AddService registers a handler; from now on, incoming RPCs carrying tag in
// their header are dispatched to it, at most maxThreads at a time.
// Registration is startup-only: not safe to call concurrently with
// HandleRPC.
func (d *Dispatcher) AddService(handler transport.Handler, tag transport.ServiceType, maxThreads int) error {
	var err error
	if handler == nil {
		err = multierr.Append(err, fmt.Errorf("service %v: handler must not be nil", tag))
	}
	if tag > transport.MaxService {
		err = multierr.Append(err, fmt.Errorf("service tag %d exceeds maximum %d", tag, uint16(transport.MaxService)))
	}
	if maxThreads < 1 {
		err = multierr.Append(err, fmt.Errorf("service %v: maxThreads must be at least 1, got %d", tag, maxThreads))
	}
	if err != nil {
		return err
	}
	if d.services[tag] != nil {
		return fmt.Errorf("service %v is already registered", tag)
	}

	d.services[tag] = &serviceInfo{
		handler:    handler,
		tag:        tag,
		maxThreads: maxThreads,
	}
	d.serviceCount++
	return nil
}

// HandleRPC is invoked by a transport when an incoming RPC is fully formed
// and ready for processing. The dispatcher arranges for the RPC to be
// serviced and invokes its SendReply once it has been; malformed or
// unroutable requests are answered immediately with a synthesized error
// reply.
func (d *Dispatcher) HandleRPC(rpc transport.ServerRPC) {
	if !d.life.IsRunning() {
		d.logger.DPanic("HandleRPC on a stopped dispatcher")
		return
	}
	if rpc.Epoch() == 0 {
		d.logger.DPanic("incoming RPC has no epoch stamp")
		return
	}
	d.observeNow()

	// Find the service for this RPC.
	hdr, hdrErr := transport.ParseRequestHeader(rpc.Request())
	var info *serviceInfo
	if hdrErr == nil && hdr.Service <= transport.MaxService {
		info = d.services[hdr.Service]
	}
	if info == nil {
		if d.serviceCount == 0 {
			// Special case for testing: with no services registered at
			// all, park the request for WaitForRPC instead of rejecting.
			d.testRPCs = append(d.testRPCs, rpc)
			return
		}
		d.obs.rejected.Inc()
		if hdrErr != nil {
			d.logger.Warn("incoming RPC shorter than common header",
				zap.Int("length", len(rpc.Request())))
			transport.PrepareErrorResponse(rpc.Response(), transport.CodeMessageTooShort)
		} else {
			d.logger.Warn("incoming RPC requested unavailable service",
				zap.Stringer("service", hdr.Service))
			transport.PrepareErrorResponse(rpc.Response(), transport.CodeServiceNotAvailable)
		}
		rpc.SendReply()
		return
	}

	// Enforce the service's concurrency cap; overflow waits in FIFO order.
	if info.requestsRunning >= info.maxThreads {
		info.waitingRPCs = append(info.waitingRPCs, rpc)
		d.obs.queued.Inc()
		return
	}
	info.requestsRunning++

	// Find a worker and hand off the RPC.
	var w *worker
	if n := len(d.idleThreads); n == 0 {
		w = newWorker(d)
		d.obs.spawned.Inc()
	} else {
		w = d.idleThreads[n-1]
		d.idleThreads = d.idleThreads[:n-1]
	}
	w.service = info
	w.handoff(workItem{rpc: rpc})
	w.busyIndex = len(d.busyThreads)
	d.busyThreads = append(d.busyThreads, w)
	d.obs.dispatched.Inc()
	d.obs.setPoolSizes(len(d.busyThreads), len(d.idleThreads))
}

// Idle reports whether no RPC is currently being serviced. When it returns
// true, memory written by any completed handler is visible to the caller.
func (d *Dispatcher) Idle() bool {
	return len(d.busyThreads) == 0
}

// NumWorkers returns the total number of workers the dispatcher has created
// and not yet released.
func (d *Dispatcher) NumWorkers() int {
	return len(d.busyThreads) + len(d.idleThreads)
}

// Poll checks for completion of outstanding RPCs: replies that can go out
// now, queued requests that can start, and workers that can return to the
// idle pool. The dispatch loop invokes it on every tick. Returns the number
// of state changes performed, zero when there was nothing to do.
func (d *Dispatcher) Poll() int {
	d.observeNow()
	work := 0

	// Iterate in reverse so that swap-removing the current entry does not
	// disturb the entries not yet visited.
	for i := len(d.busyThreads) - 1; i >= 0; i-- {
		w := d.busyThreads[i]
		state := w.state.Load()
		if state == stateWorking {
			continue
		}

		// The worker is post-processing or idle; in either case, if there
		// is an RPC we haven't responded to yet, respond now.
		if w.item.rpc != nil {
			w.item.rpc.SendReply()
			w.item.rpc = nil
			work++
		}

		if state == statePostprocessing {
			// The handler has more work to finish; leave the worker busy.
			continue
		}

		// If there is work waiting for this service, start the next RPC on
		// the same worker; otherwise recycle it.
		info := w.service
		if len(info.waitingRPCs) > 0 {
			next := info.waitingRPCs[0]
			info.waitingRPCs[0] = nil
			info.waitingRPCs = info.waitingRPCs[1:]
			w.handoff(workItem{rpc: next})
			d.obs.dispatched.Inc()
			work++
		} else {
			// Remove the worker from busyThreads, filling its slot with
			// the worker in the last slot.
			last := len(d.busyThreads) - 1
			if w != d.busyThreads[last] {
				moved := d.busyThreads[last]
				d.busyThreads[w.busyIndex] = moved
				moved.busyIndex = w.busyIndex
			}
			d.busyThreads = d.busyThreads[:last]
			w.busyIndex = -1
			d.idleThreads = append(d.idleThreads, w)
			info.requestsRunning--
			work++
		}
	}

	d.obs.setPoolSizes(len(d.busyThreads), len(d.idleThreads))
	return work
}

// WaitForRPC polls the dispatch loop until an unrouted request shows up on
// the test queue, or the timeout elapses, in which case it returns nil. Only
// meaningful when no services are registered; test-only.
func (d *Dispatcher) WaitForRPC(timeout time.Duration) transport.ServerRPC {
	deadline := d.clock.Now().Add(timeout)
	for {
		if len(d.testRPCs) > 0 {
			rpc := d.testRPCs[0]
			d.testRPCs[0] = nil
			d.testRPCs = d.testRPCs[1:]
			return rpc
		}
		if !d.clock.Now().Before(deadline) {
			return nil
		}
		d.Poll()
	}
}

// Stop drains every in-flight RPC, orders all workers to exit and waits for
// their goroutines to finish. Dispatch thread only; no request may arrive
// once Stop has begun. Safe to call more than once.
func (d *Dispatcher) Stop() error {
	return d.life.Stop(func() error {
		for !d.Idle() {
			d.Poll()
		}
		for _, w := range d.idleThreads {
			w.exit()
		}
		d.idleThreads = nil
		d.obs.setPoolSizes(0, 0)
		return nil
	})
}

func (d *Dispatcher) observeNow() {
	d.dispatchNanos.Store(d.clock.Now().UnixNano())
}
