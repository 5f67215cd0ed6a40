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

// Package sync provides small synchronization helpers for component
// lifecycles.
package sync

import (
	"sync"

	"go.uber.org/atomic"
)

// OnceWithError runs a function at most once and latches its error so every
// subsequent call observes the same result.
type OnceWithError struct {
	done atomic.Bool
	once sync.Once
	err  error
}

// Done reports whether the function has already been run.
func (o *OnceWithError) Done() bool {
	return o.done.Load()
}

// Do runs f on the first call and returns its error; later calls skip f and
// return the latched error.
func (o *OnceWithError) Do(f func() error) error {
	o.once.Do(func() {
		o.err = f()
		o.done.Store(true)
	})
	return o.err
}
