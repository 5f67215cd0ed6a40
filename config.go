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
	"go.uber.org/multierr"
	"go.uber.org/net/metrics"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/silokv/silo/internal/clock"
)

// DefaultPollBudget is how long an idle worker actively polls for new work
// before it parks itself. It should be much longer than typical RPC
// round-trip times, so a worker holding a conversation with a single client
// never goes to sleep mid-exchange, and much longer than the cost of waking
// a parked worker (tens of microseconds on contemporary hardware).
const DefaultPollBudget = 10 * time.Millisecond

// Config specifies the parameters of a Dispatcher constructed via
// NewDispatcher. The zero value is usable: every field has a working
// default.
type Config struct {
	// Name identifies this server in logs and metrics. Defaults to
	// "dispatch".
	Name string

	// PollBudget overrides DefaultPollBudget.
	PollBudget time.Duration

	// Logger receives the dispatcher's diagnostics. Defaults to a no-op
	// logger.
	Logger *zap.Logger

	// Meter receives the dispatcher's metrics. Defaults to a scope that is
	// never exported.
	Meter *metrics.Scope

	// Tracer traces handler execution. Defaults to a no-op tracer.
	Tracer opentracing.Tracer

	// Clock supplies the dispatch thread's view of time. Defaults to the
	// system clock.
	Clock clock.Clock
}

func (cfg Config) withDefaults() Config {
	if cfg.Name == "" {
		cfg.Name = "dispatch"
	}
	if cfg.PollBudget <= 0 {
		cfg.PollBudget = DefaultPollBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Meter == nil {
		cfg.Meter = metrics.New().Scope()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = opentracing.NoopTracer{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewReal()
	}
	return cfg
}

type yamlConfig struct {
	Name       string `yaml:"name"`
	PollMicros int64  `yaml:"pollMicros"`
}

// ParseConfig reads the scalar dispatcher knobs from YAML. Runtime
// collaborators (logger, meter, tracer, clock) are wired in code.
//
//	name: master-1
//	pollMicros: 10000
func ParseConfig(data []byte) (Config, error) {
	var raw yamlConfig
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return Config{}, fmt.Errorf("malformed dispatcher config: %v", err)
	}

	var err error
	if raw.PollMicros < 0 {
		err = multierr.Append(err, fmt.Errorf("pollMicros must not be negative, got %d", raw.PollMicros))
	}
	if err != nil {
		return Config{}, err
	}

	return Config{
		Name:       raw.Name,
		PollBudget: time.Duration(raw.PollMicros) * time.Microsecond,
	}, nil
}
