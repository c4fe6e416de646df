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
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestControlSurface(files map[string]string) (ControlSurface, Procfs) {
	fp := NewTestProcfs(files)
	return NewTracefsControlSurface(fp, nil), fp
}

func TestControlSurfaceIsTracingEnabled(t *testing.T) {
	c, _ := newTestControlSurface(map[string]string{"tracing_on": "1"})
	on, err := c.IsTracingEnabled()
	require.NoError(t, err)
	require.True(t, on)

	c, _ = newTestControlSurface(map[string]string{"tracing_on": "0"})
	on, err = c.IsTracingEnabled()
	require.NoError(t, err)
	require.False(t, on)
}

func TestControlSurfaceEnableDisableEvent(t *testing.T) {
	c, fp := newTestControlSurface(nil)
	require.True(t, c.EnableEvent("sched", "sched_switch"))
	b, err := fp.ReadFtraceFile("events/sched/sched_switch/enable")
	require.NoError(t, err)
	require.Equal(t, "1", string(b))

	require.True(t, c.DisableEvent("sched", "sched_switch"))
	b, err = fp.ReadFtraceFile("events/sched/sched_switch/enable")
	require.NoError(t, err)
	require.Equal(t, "0", string(b))
}

func TestControlSurfaceEnableDisableTracing(t *testing.T) {
	c, fp := newTestControlSurface(nil)
	require.NoError(t, c.EnableTracing())
	b, _ := fp.ReadFtraceFile("tracing_on")
	require.Equal(t, "1", string(b))

	require.NoError(t, c.DisableTracing())
	b, _ = fp.ReadFtraceFile("tracing_on")
	require.Equal(t, "0", string(b))
}

func TestControlSurfaceClock(t *testing.T) {
	c, _ := newTestControlSurface(map[string]string{"trace_clock": "local [global] boot"})

	current, err := c.GetClock()
	require.NoError(t, err)
	require.Equal(t, "global", current)

	available, err := c.AvailableClocks()
	require.NoError(t, err)
	require.Equal(t, map[string]struct{}{"local": {}, "global": {}, "boot": {}}, available)
}

func TestControlSurfaceSetClock(t *testing.T) {
	c, fp := newTestControlSurface(nil)
	require.NoError(t, c.SetClock("boot"))
	b, _ := fp.ReadFtraceFile("trace_clock")
	require.Equal(t, "boot", string(b))
}

func TestControlSurfaceBufferSize(t *testing.T) {
	c, fp := newTestControlSurface(nil)
	require.NoError(t, c.SetCpuBufferSizeInPages(4))
	b, _ := fp.ReadFtraceFile("buffer_size_kb")
	kb, err := strconv.Atoi(string(b))
	require.NoError(t, err)
	require.Equal(t, 4*hostPageSizeKb(), kb)
}

func TestControlSurfaceDisableAllEventsAndClearTrace(t *testing.T) {
	c, fp := newTestControlSurface(nil)
	require.NoError(t, c.DisableAllEvents())
	b, _ := fp.ReadFtraceFile("events/enable")
	require.Equal(t, "0", string(b))

	require.NoError(t, c.ClearTrace())
	b, _ = fp.ReadFtraceFile("trace")
	require.Equal(t, "", string(b))
}
