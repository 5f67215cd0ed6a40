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
	"go.uber.org/multierr"
	"go.uber.org/net/metrics"
)

// observer bundles the dispatcher's metrics instruments.
type observer struct {
	dispatched *metrics.Counter
	queued     *metrics.Counter
	rejected   *metrics.Counter
	spawned    *metrics.Counter
	busy       *metrics.Gauge
	idle       *metrics.Gauge
}

func newObserver(meter *metrics.Scope, server string) (*observer, error) {
	tags := metrics.Tags{"server": server}
	var errs error

	dispatched, err := meter.Counter(metrics.Spec{
		Name:      "requests_dispatched",
		Help:      "Number of RPCs handed to a worker.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	queued, err := meter.Counter(metrics.Spec{
		Name:      "requests_queued",
		Help:      "Number of RPCs held in a service's overflow queue.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	rejected, err := meter.Counter(metrics.Spec{
		Name:      "requests_rejected",
		Help:      "Number of RPCs answered with a synthesized error reply.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	spawned, err := meter.Counter(metrics.Spec{
		Name:      "workers_spawned",
		Help:      "Number of worker goroutines created.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	busy, err := meter.Gauge(metrics.Spec{
		Name:      "workers_busy",
		Help:      "Workers currently bound to an RPC.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	idle, err := meter.Gauge(metrics.Spec{
		Name:      "workers_idle",
		Help:      "Workers waiting for a handoff.",
		ConstTags: tags,
	})
	errs = multierr.Append(errs, err)

	if errs != nil {
		return nil, errs
	}
	return &observer{
		dispatched: dispatched,
		queued:     queued,
		rejected:   rejected,
		spawned:    spawned,
		busy:       busy,
		idle:       idle,
	}, nil
}

func (o *observer) setPoolSizes(busy, idle int) {
	o.busy.Store(int64(busy))
	o.idle.Store(int64(idle))
}
