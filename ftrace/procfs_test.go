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
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTestProcfsReadWriteRoundtrip(t *testing.T) {
	fp := NewTestProcfs(map[string]string{"tracing_on": "1"})

	b, err := fp.ReadFtraceFile("tracing_on")
	require.NoError(t, err)
	require.Equal(t, "1", string(b))

	require.NoError(t, fp.WriteFtraceFile("tracing_on", []byte("0")))
	b, err = fp.ReadFtraceFile("tracing_on")
	require.NoError(t, err)
	require.Equal(t, "0", string(b))
}

func TestTestProcfsProcFileWhitelist(t *testing.T) {
	fp := NewTestProcfs(map[string]string{"kallsyms": "deadbeef T foo"})

	b, err := fp.ReadProcFile("kallsyms")
	require.NoError(t, err)
	require.Equal(t, "deadbeef T foo", string(b))

	_, err = fp.ReadProcFile("self/maps")
	require.ErrorIs(t, err, ErrBadProcFileName)
}

func TestTestProcfsOpenFtrace(t *testing.T) {
	fp := NewTestProcfs(map[string]string{"per_cpu/cpu0/trace_pipe_raw": "hello"})

	rc, err := fp.OpenFtrace("per_cpu/cpu0/trace_pipe_raw")
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}

func TestSafeFtracePathRejectsTraversal(t *testing.T) {
	require.True(t, SafeFtracePath("events/sched/sched_switch/enable"))
	require.False(t, SafeFtracePath(".."))
}

func TestSafeProcPath(t *testing.T) {
	require.True(t, SafeProcPath("kallsyms"))
	require.False(t, SafeProcPath("self/environ"))
}

func TestRecordingProcfsDump(t *testing.T) {
	fp := NewTestProcfs(map[string]string{"tracing_on": "1"})
	rfp := NewRecordingProcfs(fp)

	_, err := rfp.ReadFtraceFile("tracing_on")
	require.NoError(t, err)

	dumpPath := t.TempDir() + "/dump.go"
	require.NoError(t, rfp.Dump(dumpPath))

	contents, err := os.ReadFile(dumpPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "recordedFiles")
	require.Contains(t, string(contents), "ftrace/tracing_on")
}
