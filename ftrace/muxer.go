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

import (
	"sort"

	"go.uber.org/zap"
)

// clockPreference lists trace_clock sources in the order setupClock
// prefers them.
var clockPreference = []string{"boot", "global", "local"}

const (
	defaultPerCpuBufferSizeKb = 512
	maxPerCpuBufferSizeKb     = 2 * 1024

	// forcedAtraceEvent is the event force-enabled whenever a request
	// engages atrace, so print-format atrace markers land in the trace.
	forcedAtraceEvent = "print"

	// virtualEventGroup's enable state is implicit and never toggled
	// per-event by the muxer.
	virtualEventGroup = "ftrace"
)

// ComputeCpuBufferSizeInPages converts a requested per-CPU buffer size in
// KB into a page count: 0 or anything over the ceiling falls back to the
// default, and the result is never less than one page.
func ComputeCpuBufferSizeInPages(requestedKb uint) int {
	if requestedKb == 0 || requestedKb > maxPerCpuBufferSizeKb {
		requestedKb = defaultPerCpuBufferSizeKb
	}
	pages := int(requestedKb) / hostPageSizeKb()
	if pages == 0 {
		return 1
	}
	return pages
}

// FtraceConfigMuxer merges the FtraceConfig requests of multiple
// concurrent clients into a single, consistent configuration of the
// kernel ftrace facility, and reverses those effects precisely when the
// last client departs. It is not safe for concurrent use; callers
// serialize their own requests.
type FtraceConfigMuxer struct {
	control ControlSurface
	catalog EventCatalog
	atrace  AtraceRunner
	log     *zap.SugaredLogger

	state   currentState
	configs map[FtraceConfigId]AcceptedConfig
	lastID  FtraceConfigId
}

// NewFtraceConfigMuxer builds a muxer over the three external
// capabilities. A nil logger is replaced with a no-op one.
func NewFtraceConfigMuxer(control ControlSurface, catalog EventCatalog, atrace AtraceRunner, log *zap.SugaredLogger) *FtraceConfigMuxer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FtraceConfigMuxer{
		control: control,
		catalog: catalog,
		atrace:  atrace,
		log:     log,
		state:   newCurrentState(),
		configs: make(map[FtraceConfigId]AcceptedConfig),
	}
}

// RequestConfig merges request into the current kernel configuration and
// returns a fresh non-zero id naming the accepted config, or 0 if the
// request was rejected (reason explains why; it is ReasonNone on
// acceptance). A rejection decided before any write leaves all state
// untouched. A cold start rejected because EnableTracing fails has its
// newly enabled events and atrace start undone, but the trace clock and
// per-CPU buffer size it already wrote are not restored.
func (m *FtraceConfigMuxer) RequestConfig(request FtraceConfig) (FtraceConfigId, RejectReason) {
	isEnabled, err := m.control.IsTracingEnabled()
	if err != nil {
		m.log.Errorw("failed to read tracing_on, refusing request", "err", err)
		return 0, ReasonForeignOwner
	}

	coldStart := len(m.configs) == 0
	atraceStartedThisCall := false

	if coldStart {
		// If someone outside this muxer is using ftrace, give up now.
		if isEnabled {
			return 0, ReasonForeignOwner
		}
		if request.RequiresAtrace() {
			if err := m.enableAtrace(request); err != nil {
				m.log.Errorw("atrace failed to start", "err", err)
				return 0, ReasonForeignOwner
			}
			atraceStartedThisCall = true
		}
		m.setupClock()
		m.setupBufferSize(request)
	} else {
		// Did someone turn ftrace off behind our back? If so give up.
		if !isEnabled {
			return 0, ReasonTornDown
		}
	}

	accepted := AcceptedConfig{EventNames: make(map[string]struct{})}
	var newlyEnabled []Event

	for _, name := range sortedKeys(request.eventNameSet()) {
		event, ok := m.catalog.GetEventByName(name)
		if !ok {
			m.log.Debugw("event not known, skipping", "name", name)
			continue
		}
		if _, already := m.state.ftraceEvents[name]; already || event.Group == virtualEventGroup {
			accepted.EventNames[name] = struct{}{}
			continue
		}
		if m.control.EnableEvent(event.Group, event.Name) {
			m.state.ftraceEvents[name] = struct{}{}
			accepted.EventNames[name] = struct{}{}
			newlyEnabled = append(newlyEnabled, event)
		}
	}

	if coldStart {
		if err := m.control.EnableTracing(); err != nil {
			m.log.Errorw("failed to enable tracing", "err", err)
			m.rollbackFailedColdStart(newlyEnabled, atraceStartedThisCall)
			return 0, ReasonForeignOwner
		}
		m.state.tracingOn = true
	}

	m.lastID++
	id := m.lastID
	m.configs[id] = accepted
	return id, ReasonNone
}

// rollbackFailedColdStart undoes the event-enable and atrace-start side
// effects of a cold-start RequestConfig call that was rejected after
// those writes had already landed, so a rejection leaves no enabled
// events or running atrace behind with an empty configs set. The clock
// and buffer-size writes of setupClock and setupBufferSize are not undone.
func (m *FtraceConfigMuxer) rollbackFailedColdStart(newlyEnabled []Event, atraceStartedThisCall bool) {
	for _, event := range newlyEnabled {
		if m.control.DisableEvent(event.Group, event.Name) {
			delete(m.state.ftraceEvents, event.Name)
		}
	}
	if atraceStartedThisCall {
		if err := m.disableAtrace(); err != nil {
			m.log.Errorw("atrace failed to stop during rollback", "err", err)
		}
	}
}

// RemoveConfig surrenders the config previously returned by RequestConfig.
// It returns false if id is zero or unknown, and never mutates state in
// that case. On the last removal it tears the whole session down.
func (m *FtraceConfigMuxer) RemoveConfig(id FtraceConfigId) bool {
	if id == 0 {
		return false
	}
	if _, ok := m.configs[id]; !ok {
		return false
	}
	delete(m.configs, id)

	stillRequired := make(map[string]struct{})
	for _, cfg := range m.configs {
		for name := range cfg.EventNames {
			stillRequired[name] = struct{}{}
		}
	}

	for _, name := range sortedKeys(m.state.ftraceEvents) {
		if _, needed := stillRequired[name]; needed {
			continue
		}
		event, ok := m.catalog.GetEventByName(name)
		if !ok {
			continue
		}
		if m.control.DisableEvent(event.Group, event.Name) {
			delete(m.state.ftraceEvents, name)
		}
	}

	if len(m.configs) == 0 {
		if err := m.control.DisableTracing(); err != nil {
			m.log.Errorw("failed to disable tracing during teardown", "err", err)
		}
		if err := m.control.SetCpuBufferSizeInPages(0); err != nil {
			m.log.Errorw("failed to zero buffer size during teardown", "err", err)
		}
		if err := m.control.DisableAllEvents(); err != nil {
			m.log.Errorw("failed to disable all events during teardown", "err", err)
		}
		if err := m.control.ClearTrace(); err != nil {
			m.log.Errorw("failed to clear trace during teardown", "err", err)
		}
		m.state.tracingOn = false
		m.state.cpuBufferSizePages = 0
		if m.state.atraceOn {
			if err := m.disableAtrace(); err != nil {
				m.log.Errorw("atrace failed to stop", "err", err)
			}
		}
	}

	return true
}

// GetConfig returns the accepted config stored under id, if any.
func (m *FtraceConfigMuxer) GetConfig(id FtraceConfigId) (AcceptedConfig, bool) {
	cfg, ok := m.configs[id]
	return cfg, ok
}

func (m *FtraceConfigMuxer) setupClock() {
	current, err := m.control.GetClock()
	if err != nil {
		m.log.Debugw("failed to read current clock", "err", err)
		return
	}
	available, err := m.control.AvailableClocks()
	if err != nil {
		m.log.Debugw("failed to read available clocks", "err", err)
		return
	}
	for _, clock := range clockPreference {
		if _, ok := available[clock]; !ok {
			continue
		}
		if current == clock {
			return
		}
		if err := m.control.SetClock(clock); err != nil {
			m.log.Debugw("failed to set clock", "clock", clock, "err", err)
		}
		return
	}
}

func (m *FtraceConfigMuxer) setupBufferSize(request FtraceConfig) {
	pages := ComputeCpuBufferSizeInPages(request.BufferSizeKb)
	if err := m.control.SetCpuBufferSizeInPages(pages); err != nil {
		m.log.Debugw("failed to set buffer size", "pages", pages, "err", err)
	}
	m.state.cpuBufferSizePages = pages
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
