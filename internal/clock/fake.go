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

package clock

import (
	"sync"
	"time"
)

// FakeClock is a clock that only moves forward when told to. It makes
// time-based code testable without real sleeps.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	c        chan time.Time
}

var _ Clock = (*FakeClock)(nil)

// NewFake returns a fake clock whose current time is the Unix epoch.
func NewFake() *FakeClock {
	return &FakeClock{now: time.Unix(0, 0)}
}

// Now returns the fake clock's current time.
func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

// Add moves the fake clock forward, firing every waiter whose deadline has
// been reached.
func (fc *FakeClock) Add(d time.Duration) {
	fc.mu.Lock()
	fc.now = fc.now.Add(d)
	now := fc.now
	remaining := fc.waiters[:0]
	var fired []*waiter
	for _, w := range fc.waiters {
		if w.deadline.After(now) {
			remaining = append(remaining, w)
		} else {
			fired = append(fired, w)
		}
	}
	fc.waiters = remaining
	fc.mu.Unlock()

	for _, w := range fired {
		w.c <- now
	}
}

// Sleep blocks the goroutine until the fake clock has been advanced past the
// duration. The clock must be moved forward from another goroutine.
func (fc *FakeClock) Sleep(d time.Duration) {
	<-fc.After(d)
}

// After produces a channel that emits once the fake clock has advanced by
// the duration.
func (fc *FakeClock) After(d time.Duration) <-chan time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	c := make(chan time.Time, 1)
	if d <= 0 {
		c <- fc.now
		return c
	}
	fc.waiters = append(fc.waiters, &waiter{deadline: fc.now.Add(d), c: c})
	return c
}
