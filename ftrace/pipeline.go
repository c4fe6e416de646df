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
	"reflect"

	"go.uber.org/zap"
)

// CapturePipeline multiplexes the per-CPU raw trace_pipe_raw channels
// into a single callback-driven stream, using reflect.Select over one
// channel per CPU plus a done channel.
type CapturePipeline struct {
	fp          Procfs
	log         *zap.SugaredLogger
	selectCases []reflect.SelectCase
}

// NewCapturePipeline builds a pipeline over fp; call Prepare before
// Capture.
func NewCapturePipeline(fp Procfs, log *zap.SugaredLogger) *CapturePipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CapturePipeline{fp: fp, log: log}
}

// Prepare opens the raw pipe for each of the first cpus CPUs. doneCh ends
// every opened pipe when closed.
func (p *CapturePipeline) Prepare(cpus int, doneCh <-chan bool) error {
	p.selectCases = []reflect.SelectCase{
		{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(doneCh)},
	}

	for cpu := 0; cpu < cpus; cpu++ {
		ch, err := openRawPipe(p.fp, cpu, doneCh, p.log)
		if err != nil {
			return err
		}
		p.selectCases = append(p.selectCases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(ch),
		})
	}
	return nil
}

// Capture blocks, invoking callback with each raw page read from any
// prepared CPU, until doneCh fires or every per-CPU channel closes.
func (p *CapturePipeline) Capture(callback func(cpu int, page []byte)) {
	chanType := reflect.TypeOf([]byte{})

	for len(p.selectCases) > 1 {
		chosen, recv, recvOK := reflect.Select(p.selectCases)
		if chosen == 0 {
			return
		}
		if !recvOK {
			p.selectCases = append(p.selectCases[:chosen], p.selectCases[chosen+1:]...)
			continue
		}
		if recv.Type() == chanType {
			callback(chosen-1, recv.Interface().([]byte))
		}
	}
}
