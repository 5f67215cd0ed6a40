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

import "time"

// RealClock reads the real time by wrapping the time package functions.
type RealClock struct{}

var _ Clock = RealClock{}

// NewReal returns a real clock.
func NewReal() RealClock { return RealClock{} }

// Now returns the current real time.
func (RealClock) Now() time.Time { return time.Now() }

// Sleep pauses the goroutine for the given duration.
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

// After produces a channel that emits the time after the duration passes.
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
