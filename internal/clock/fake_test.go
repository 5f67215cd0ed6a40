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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockAdd(t *testing.T) {
	fc := NewFake()
	start := fc.Now()

	fc.Add(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), fc.Now())
}

func TestFakeClockAfter(t *testing.T) {
	fc := NewFake()
	c := fc.After(time.Second)

	select {
	case <-c:
		t.Fatal("After fired before the clock advanced")
	default:
	}

	fc.Add(999 * time.Millisecond)
	select {
	case <-c:
		t.Fatal("After fired before its deadline")
	default:
	}

	fc.Add(time.Millisecond)
	select {
	case now := <-c:
		assert.Equal(t, fc.Now(), now)
	default:
		t.Fatal("After did not fire at its deadline")
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	fc := NewFake()
	select {
	case <-fc.After(0):
	default:
		t.Fatal("After(0) must fire immediately")
	}
}

func TestFakeClockSleep(t *testing.T) {
	fc := NewFake()
	done := make(chan struct{})

	go func() {
		fc.Sleep(time.Minute)
		close(done)
	}()

	// Let the sleeper register its waiter, then release it.
	for {
		fc.mu.Lock()
		registered := len(fc.waiters) > 0
		fc.mu.Unlock()
		if registered {
			break
		}
		time.Sleep(time.Millisecond)
	}
	fc.Add(time.Minute)
	<-done
}
