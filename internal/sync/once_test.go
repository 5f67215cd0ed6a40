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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnceWithErrorLatchesResult(t *testing.T) {
	var o OnceWithError
	boom := errors.New("boom")
	calls := 0

	assert.False(t, o.Done())
	assert.Equal(t, boom, o.Do(func() error {
		calls++
		return boom
	}))
	assert.True(t, o.Done())

	assert.Equal(t, boom, o.Do(func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls, "the function must run exactly once")
}

func TestLifecycleOnce(t *testing.T) {
	var l LifecycleOnce
	assert.False(t, l.IsRunning())

	assert.NoError(t, l.Start(func() error { return nil }))
	assert.True(t, l.IsRunning())

	assert.NoError(t, l.Stop(func() error { return nil }))
	assert.False(t, l.IsRunning())

	// Stop is sticky.
	assert.NoError(t, l.Stop(func() error { return errors.New("ignored") }))
	assert.False(t, l.IsRunning())
}
