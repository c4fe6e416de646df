// Copyright 2018 The Android Open Source Project
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

// fakeControlSurface is an in-memory ControlSurface double: it records
// every call so tests can assert on the exact side effects the muxer
// issues, without touching a real tracefs mount.
type fakeControlSurface struct {
	tracingEnabled      bool
	isTracingEnabledErr error
	enableTracingErr    error
	enabledEvents       map[string]bool
	allEventsDisabled   bool
	clock               string
	availableClocks     map[string]struct{}
	bufferSizePages     int
	traceCleared        bool

	enableCalls  []string
	disableCalls []string
}

func newFakeControlSurface() *fakeControlSurface {
	return &fakeControlSurface{
		enabledEvents:   make(map[string]bool),
		clock:           "local",
		availableClocks: map[string]struct{}{"local": {}, "global": {}, "boot": {}},
	}
}

func (f *fakeControlSurface) IsTracingEnabled() (bool, error) {
	return f.tracingEnabled, f.isTracingEnabledErr
}

func (f *fakeControlSurface) EnableEvent(group, name string) bool {
	f.enableCalls = append(f.enableCalls, group+"/"+name)
	f.enabledEvents[name] = true
	return true
}

func (f *fakeControlSurface) DisableEvent(group, name string) bool {
	f.disableCalls = append(f.disableCalls, group+"/"+name)
	delete(f.enabledEvents, name)
	return true
}

func (f *fakeControlSurface) DisableAllEvents() error {
	f.allEventsDisabled = true
	for k := range f.enabledEvents {
		delete(f.enabledEvents, k)
	}
	return nil
}

func (f *fakeControlSurface) EnableTracing() error {
	if f.enableTracingErr != nil {
		return f.enableTracingErr
	}
	f.tracingEnabled = true
	return nil
}

func (f *fakeControlSurface) DisableTracing() error {
	f.tracingEnabled = false
	return nil
}

func (f *fakeControlSurface) GetClock() (string, error) { return f.clock, nil }

func (f *fakeControlSurface) AvailableClocks() (map[string]struct{}, error) {
	return f.availableClocks, nil
}

func (f *fakeControlSurface) SetClock(name string) error {
	f.clock = name
	return nil
}

func (f *fakeControlSurface) SetCpuBufferSizeInPages(pages int) error {
	f.bufferSizePages = pages
	return nil
}

func (f *fakeControlSurface) ClearTrace() error {
	f.traceCleared = true
	return nil
}

// fakeAtraceRunner records every argv it was asked to run and can be
// told to fail on demand.
type fakeAtraceRunner struct {
	runs   [][]string
	fail   bool
}

func (f *fakeAtraceRunner) Run(argv []string) bool {
	f.runs = append(f.runs, append([]string{}, argv...))
	return !f.fail
}

func fakeCatalogWith(events map[string]Event) EventCatalog {
	return NewStaticCatalog(events)
}

var testCatalog = fakeCatalogWith(map[string]Event{
	"sched_switch": {Group: "sched", Name: "sched_switch"},
	"sched_wakeup": {Group: "sched", Name: "sched_wakeup"},
	"cpu_idle":     {Group: "power", Name: "cpu_idle"},
	"print":        {Group: "ftrace", Name: "print"},
})
