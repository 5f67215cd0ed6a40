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

// Package park provides a word-sized atomic state cell paired with a
// wait-on-value, wake-one parking primitive.
//
// The cell is the synchronization point of a two-goroutine handoff: one side
// publishes work with a plain store followed by Swap, the other side observes
// the new state with Load and may park itself when there is nothing to do.
// All cell operations are sequentially consistent, so the publishing store is
// visible to any goroutine that subsequently observes the swapped-in state.
package park

import "go.uber.org/atomic"

// Cell is a 32-bit atomic value that goroutines can park on.
type Cell struct {
	v atomic.Int32

	// wake holds at most one wake token. Unpark deposits a token without
	// blocking; Park consumes one. A token deposited while no goroutine is
	// parked makes the next Park return immediately, which callers must
	// treat as a spurious wakeup.
	wake chan struct{}
}

// NewCell returns a cell holding the given initial value.
func NewCell(initial int32) *Cell {
	c := &Cell{wake: make(chan struct{}, 1)}
	c.v.Store(initial)
	return c
}

// Load returns the current value of the cell.
func (c *Cell) Load() int32 { return c.v.Load() }

// Store sets the value of the cell.
func (c *Cell) Store(v int32) { c.v.Store(v) }

// Swap sets the value of the cell and returns the previous value.
func (c *Cell) Swap(v int32) int32 { return c.v.Swap(v) }

// CompareAndSwap sets the cell to new only if it currently holds old,
// reporting whether the swap happened.
func (c *Cell) CompareAndSwap(old, new int32) bool {
	return c.v.CompareAndSwap(old, new)
}

// Park blocks the calling goroutine until another goroutine calls Unpark,
// provided the cell still holds expected. If the value has already moved on,
// Park returns immediately (the analogue of EWOULDBLOCK from a kernel
// wait-on-value call). Park may also return spuriously; callers must re-check
// the cell and park again if they still have nothing to do.
func (c *Cell) Park(expected int32) {
	if c.v.Load() != expected {
		return
	}
	<-c.wake
}

// Unpark wakes at most one goroutine parked on the cell. It never blocks; if
// no goroutine is parked the wake token is retained and the next Park returns
// immediately.
func (c *Cell) Unpark() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
