// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ftrace

import (
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ControlSurface is the thin abstraction over tracefs the muxer drives:
// enable/disable individual events, enable/disable tracing globally, pick
// a clock, size the per-CPU ring buffer, and clear the trace. It is the
// only capability that talks to the kernel.
type ControlSurface interface {
	IsTracingEnabled() (bool, error)
	EnableEvent(group, name string) bool
	DisableEvent(group, name string) bool
	DisableAllEvents() error
	EnableTracing() error
	DisableTracing() error
	GetClock() (string, error)
	AvailableClocks() (map[string]struct{}, error)
	SetClock(name string) error
	SetCpuBufferSizeInPages(pages int) error
	ClearTrace() error
}

type tracefsControlSurface struct {
	fp  Procfs
	log *zap.SugaredLogger
}

// NewTracefsControlSurface builds a ControlSurface over fp, the way the
// teacher's Ftrace.Enable/Disable/Clear and EventType.Enable/Disable wrote
// directly to tracefs control files.
func NewTracefsControlSurface(fp Procfs, log *zap.SugaredLogger) ControlSurface {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &tracefsControlSurface{fp: fp, log: log}
}

func (c *tracefsControlSurface) IsTracingEnabled() (bool, error) {
	b, err := c.fp.ReadFtraceFile("tracing_on")
	if err != nil {
		return false, errors.Wrap(err, "read tracing_on")
	}
	return strings.TrimSpace(string(b)) == "1", nil
}

func (c *tracefsControlSurface) EnableEvent(group, name string) bool {
	err := c.fp.WriteFtraceFile(path.Join("events", group, name, "enable"), []byte("1"))
	if err != nil {
		c.log.Debugw("failed to enable event", "group", group, "name", name, "err", err)
		return false
	}
	return true
}

func (c *tracefsControlSurface) DisableEvent(group, name string) bool {
	err := c.fp.WriteFtraceFile(path.Join("events", group, name, "enable"), []byte("0"))
	if err != nil {
		c.log.Debugw("failed to disable event", "group", group, "name", name, "err", err)
		return false
	}
	return true
}

func (c *tracefsControlSurface) DisableAllEvents() error {
	return errors.Wrap(c.fp.WriteFtraceFile("events/enable", []byte("0")), "disable all events")
}

func (c *tracefsControlSurface) EnableTracing() error {
	return errors.Wrap(c.fp.WriteFtraceFile("tracing_on", []byte("1")), "enable tracing")
}

func (c *tracefsControlSurface) DisableTracing() error {
	return errors.Wrap(c.fp.WriteFtraceFile("tracing_on", []byte("0")), "disable tracing")
}

func (c *tracefsControlSurface) ClearTrace() error {
	return errors.Wrap(c.fp.WriteFtraceFile("trace", []byte("")), "clear trace")
}

func (c *tracefsControlSurface) GetClock() (string, error) {
	b, err := c.fp.ReadFtraceFile("trace_clock")
	if err != nil {
		return "", errors.Wrap(err, "read trace_clock")
	}
	// The active clock is the one set off in brackets, e.g.
	// "local [global] boot".
	for _, field := range strings.Fields(string(b)) {
		if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return field[1 : len(field)-1], nil
		}
	}
	return "", nil
}

func (c *tracefsControlSurface) AvailableClocks() (map[string]struct{}, error) {
	b, err := c.fp.ReadFtraceFile("trace_clock")
	if err != nil {
		return nil, errors.Wrap(err, "read trace_clock")
	}
	clocks := make(map[string]struct{})
	for _, field := range strings.Fields(string(b)) {
		field = strings.TrimPrefix(strings.TrimSuffix(field, "]"), "[")
		clocks[field] = struct{}{}
	}
	return clocks, nil
}

func (c *tracefsControlSurface) SetClock(name string) error {
	return errors.Wrapf(c.fp.WriteFtraceFile("trace_clock", []byte(name)), "set trace_clock %q", name)
}

func (c *tracefsControlSurface) SetCpuBufferSizeInPages(pages int) error {
	return errors.Wrap(
		c.fp.WriteFtraceFile("buffer_size_kb", []byte(strconv.Itoa(pages*hostPageSizeKb()))),
		"set buffer_size_kb",
	)
}
