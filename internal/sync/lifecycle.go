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

package sync

// LifecycleOnce gates a component's start and stop transitions so that each
// runs at most once.
type LifecycleOnce struct {
	start OnceWithError
	stop  OnceWithError
}

// Start runs f once; later calls return the first call's error.
func (l *LifecycleOnce) Start(f func() error) error {
	return l.start.Do(f)
}

// Stop runs f once; later calls return the first call's error.
func (l *LifecycleOnce) Stop(f func() error) error {
	return l.stop.Do(f)
}

// IsRunning reports whether the component has started and not yet stopped.
func (l *LifecycleOnce) IsRunning() bool {
	return l.start.Done() && !l.stop.Done()
}
