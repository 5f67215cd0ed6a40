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

// Package silo implements the request dispatch core of the silo in-memory
// storage server.
//
// A single dispatch goroutine accepts fully formed RPCs from transports,
// routes each to its registered service, enforces per-service concurrency
// caps with FIFO overflow queues, and hands admitted requests to a pool of
// worker goroutines. Workers advertise their state through a lock-free
// atomic cell: they busy-poll for new work for a bounded interval to keep
// dispatch latency in the low microseconds, then park until the dispatch
// thread wakes them. Handlers may signal that their reply is complete before
// they return, letting the dispatch thread send it while the worker finishes
// post-processing.
//
// All dispatcher state other than the worker state cells, the work item
// slots and the dispatch clock cell is confined to the dispatch thread:
// transports call HandleRPC on that thread, and the owning
// loop calls Poll on every tick to complete outstanding replies and recycle
// workers.
package silo // import "github.com/silokv/silo"
