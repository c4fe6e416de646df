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

import "github.com/pkg/errors"

// ErrAtraceFailed is returned by enableAtrace and disableAtrace when the
// atrace helper exits non-zero. The original treats this as fatal to the
// whole process (PERFETTO_CHECK); here the process is never terminated.
// RequestConfig turns a start failure into a ReasonForeignOwner rejection,
// and RemoveConfig and the cold-start rollback log a stop failure; no
// exported method returns this error to its caller.
var ErrAtraceFailed = errors.New("atrace helper failed")

func (m *FtraceConfigMuxer) enableAtrace(request FtraceConfig) error {
	args := []string{"atrace", "--async_start"}
	args = append(args, request.AtraceCategories...)
	if len(request.AtraceApps) > 0 {
		args = append(args, "-a")
		args = append(args, request.AtraceApps...)
	}

	m.log.Debugw("starting atrace", "args", args)
	if !m.atrace.Run(args) {
		return ErrAtraceFailed
	}
	// atrace_on tracks "a stop will be owed", so it is only raised once
	// the helper has actually started; a failed start owes nothing.
	m.state.atraceOn = true
	return nil
}

func (m *FtraceConfigMuxer) disableAtrace() error {
	// The original asserts PERFETTO_DCHECK(!current_state_.atrace_on) on
	// entry here, which contradicts the intent of turning the flag off.
	// The corrected precondition is atrace_on == true.
	if !m.state.atraceOn {
		m.log.DPanic("disableAtrace called with atrace already off")
	}

	m.log.Debugw("stopping atrace")
	ok := m.atrace.Run([]string{"atrace", "--async_stop"})
	m.state.atraceOn = false
	if !ok {
		return ErrAtraceFailed
	}
	return nil
}
