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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		msg     string
		yaml    string
		want    Config
		wantErr string
	}{
		{
			msg:  "full",
			yaml: "name: master-1\npollMicros: 250\n",
			want: Config{Name: "master-1", PollBudget: 250 * time.Microsecond},
		},
		{
			msg:  "empty document",
			yaml: "",
			want: Config{},
		},
		{
			msg:     "negative poll budget",
			yaml:    "pollMicros: -1\n",
			wantErr: "must not be negative",
		},
		{
			msg:     "unknown knob",
			yaml:    "name: x\nworkers: 12\n",
			wantErr: "malformed dispatcher config",
		},
		{
			msg:     "not yaml",
			yaml:    "{{{",
			wantErr: "malformed dispatcher config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, "dispatch", cfg.Name)
	assert.Equal(t, DefaultPollBudget, cfg.PollBudget)
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Meter)
	assert.NotNil(t, cfg.Tracer)
	assert.NotNil(t, cfg.Clock)
}

func TestParsedConfigBuildsDispatcher(t *testing.T) {
	cfg, err := ParseConfig([]byte("name: ping-server\npollMicros: 100\n"))
	require.NoError(t, err)

	d := newTestDispatcher(t, cfg)
	assert.Equal(t, 100*time.Microsecond, d.pollBudget)
}
