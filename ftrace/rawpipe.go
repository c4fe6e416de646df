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
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const perCpuRawPipeFmt = "per_cpu/cpu%d/trace_pipe_raw"

// openRawPipe returns a channel delivering raw, page-sized chunks read
// from one CPU's binary trace_pipe_raw file. Writing to doneCh ends it.
// This is the transport the trace-processor façade's ingestion sits on
// top of; it does not interpret the bytes (parsing the binary ring
// buffer layout is a separate, external decode engine).
func openRawPipe(fp Procfs, cpu int, doneCh <-chan bool, log *zap.SugaredLogger) (<-chan []byte, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	f, err := fp.OpenFtrace(fmt.Sprintf(perCpuRawPipeFmt, cpu))
	if err != nil {
		return nil, err
	}

	ch := make(chan []byte)
	pageSize := unix.Getpagesize()

	go func() {
		defer f.Close()
		defer close(ch)

		for {
			buf := make([]byte, pageSize)
			n, err := f.Read(buf)
			if e, ok := err.(*os.PathError); ok && e.Err == unix.EINTR {
				continue
			}
			if err == io.EOF || err != nil || n == 0 {
				if err != nil && err != io.EOF {
					log.Debugw("raw ftrace pipe read failed", "cpu", cpu, "err", err)
				}
				return
			}

			select {
			case <-doneCh:
				// The Read above may still be blocked, so this select may
				// never observe doneCh until the next successful read.
				return
			case ch <- buf[0:n]:
			}
		}
	}()

	return ch, nil
}
