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

// FtraceConfig is an immutable request submitted by a tracing client.
type FtraceConfig struct {
	EventNames       []string
	BufferSizeKb     uint
	AtraceCategories []string
	AtraceApps       []string
}

// RequiresAtrace reports whether this config needs the atrace helper.
func (c FtraceConfig) RequiresAtrace() bool {
	return len(c.AtraceCategories) > 0 || len(c.AtraceApps) > 0
}

func (c FtraceConfig) eventNameSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.EventNames))
	for _, n := range c.EventNames {
		set[n] = struct{}{}
	}
	if c.RequiresAtrace() {
		set[forcedAtraceEvent] = struct{}{}
	}
	return set
}

// FtraceConfigId is an opaque, non-zero, monotonically allocated id.
// Zero is reserved to mean "invalid / rejected".
type FtraceConfigId uint64

// AcceptedConfig is the narrower projection of a request the muxer
// actually imposed (or recognized as already imposed) on the kernel.
type AcceptedConfig struct {
	EventNames map[string]struct{}
}

// RejectReason tags why RequestConfig returned id 0. ReasonNone means the
// request was accepted. This is layered on top of, rather than in place
// of, the FtraceConfigId return so existing id==0 checks keep working.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	// ReasonForeignOwner: a foreign agent already owns tracing when no
	// configs are active. It is also returned when tracing_on cannot be
	// read, when the atrace helper fails to start, and when enabling
	// tracing fails on a cold start.
	ReasonForeignOwner
	// ReasonTornDown: tracing was turned off behind the muxer's back
	// while configs were active.
	ReasonTornDown
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonForeignOwner:
		return "foreign-owner"
	case ReasonTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

// currentState is the muxer's authoritative view of what it has imposed
// on the kernel. It never escapes the package.
type currentState struct {
	ftraceEvents       map[string]struct{}
	tracingOn          bool
	atraceOn           bool
	cpuBufferSizePages int
}

func newCurrentState() currentState {
	return currentState{ftraceEvents: make(map[string]struct{})}
}
