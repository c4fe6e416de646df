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
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Procfs is the raw file-level capability the rest of the package is built
// on: reading and writing the tracefs control files and the handful of
// /proc files ftrace output depends on (kallsyms). It knows nothing about
// ftrace semantics; ControlSurface is built on top of it.
type Procfs interface {
	ReadFtraceFile(string) ([]byte, error)
	WriteFtraceFile(string, []byte) error
	ReadProcFile(string) ([]byte, error)
	OpenFtrace(string) (io.ReadCloser, error)
}

// tracefsMountCandidates are tried in order; modern kernels mount tracefs
// directly, older ones only expose it under debugfs.
var tracefsMountCandidates = []string{
	"/sys/kernel/tracing",
	"/sys/kernel/debug/tracing",
}

const procPath = "/proc"

var ErrBadFtraceFileName = errors.New("bad tracefs file name")
var ErrBadProcFileName = errors.New("bad proc file name")
var ErrNoTracefsMount = errors.New("no tracefs mount point found")

// DetectTracefsMount returns the first tracefs mount candidate that exists
// on this host, the way a real deployment has to cope with both the
// modern and the debugfs-only mount conventions.
func DetectTracefsMount() (string, error) {
	for _, candidate := range tracefsMountCandidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", ErrNoTracefsMount
}

type localProcfs struct {
	tracefsPath string
}

// NewLocalProcfs builds a Procfs over the real, locally mounted tracefs.
// It auto-detects the mount point; pass an explicit path to pin it (tests
// that run against a real kernel sometimes need to).
func NewLocalProcfs(tracefsPath string) (Procfs, error) {
	if tracefsPath == "" {
		var err error
		tracefsPath, err = DetectTracefsMount()
		if err != nil {
			return nil, err
		}
	}
	return &localProcfs{tracefsPath: tracefsPath}, nil
}

func (p *localProcfs) ReadFtraceFile(filename string) ([]byte, error) {
	if !SafeFtracePath(filename) {
		return nil, ErrBadFtraceFileName
	}
	b, err := os.ReadFile(path.Join(p.tracefsPath, filename))
	return b, errors.Wrapf(err, "read tracefs file %q", filename)
}

func (p *localProcfs) ReadProcFile(filename string) ([]byte, error) {
	if !SafeProcPath(filename) {
		return nil, ErrBadProcFileName
	}
	b, err := os.ReadFile(path.Join(procPath, filename))
	return b, errors.Wrapf(err, "read proc file %q", filename)
}

func (p *localProcfs) WriteFtraceFile(filename string, data []byte) error {
	if !SafeFtracePath(filename) {
		return ErrBadFtraceFileName
	}
	err := os.WriteFile(path.Join(p.tracefsPath, filename), data, 0)
	return errors.Wrapf(err, "write tracefs file %q", filename)
}

func (p *localProcfs) OpenFtrace(filename string) (io.ReadCloser, error) {
	if !SafeFtracePath(filename) {
		return nil, ErrBadFtraceFileName
	}
	f, err := os.Open(path.Join(p.tracefsPath, filename))
	return f, errors.Wrapf(err, "open tracefs file %q", filename)
}

// recordingProcfs wraps another Procfs and remembers every file it reads,
// so a real tracing session can be replayed later in a test without a
// kernel. Writes pass straight through; this is a read recorder only.
type recordingProcfs struct {
	Procfs
	sync.Mutex
	files map[string][]byte
}

// NewRecordingProcfs wraps fp, recording every file read through it.
func NewRecordingProcfs(fp Procfs) *recordingProcfs {
	return &recordingProcfs{
		Procfs: fp,
		files:  make(map[string][]byte),
	}
}

func (r *recordingProcfs) ReadFtraceFile(filename string) ([]byte, error) {
	buf, err := r.Procfs.ReadFtraceFile(filename)
	if err == nil {
		r.Lock()
		r.files[path.Join("ftrace", filename)] = buf
		r.Unlock()
	}
	return buf, err
}

func (r *recordingProcfs) ReadProcFile(filename string) ([]byte, error) {
	buf, err := r.Procfs.ReadProcFile(filename)
	if err == nil {
		r.Lock()
		r.files[path.Join("proc", filename)] = buf
		r.Unlock()
	}
	return buf, err
}

// Dump writes the recorded files out as a Go source fragment: a
// recordedFiles map literal keyed "ftrace/<name>" or "proc/<name>", with
// plain-text contents backquoted and anything else gzip-compressed and
// quoted. NewTestProcfs keys files without those prefixes and does not
// decompress, so the fragment is not directly loadable into it.
func (r *recordingProcfs) Dump(filename string) error {
	r.Lock()
	defer r.Unlock()

	names := make([]string, 0, len(r.files))
	for k := range r.files {
		names = append(names, k)
	}
	sort.Strings(names)

	out, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0664)
	if err != nil {
		return errors.Wrap(err, "create recording dump")
	}
	defer out.Close()

	if _, err := out.WriteString("var recordedFiles = map[string]string{\n"); err != nil {
		return err
	}
	for _, name := range names {
		data := r.files[name]
		out.WriteString("`" + name + "`: ")
		if canMultilineBackquote(string(data)) {
			out.WriteString("`" + string(data) + "`")
		} else {
			var compressed bytes.Buffer
			w := gzip.NewWriter(&compressed)
			w.Write(data)
			w.Close()
			out.WriteString(strconv.QuoteToASCII(compressed.String()))
		}
		out.WriteString(",\n")
	}
	_, err = out.WriteString("}\n")
	return err
}

// testProcfs replays a fixed map of file contents; it never touches the
// filesystem and every write is accepted and discarded.
type testProcfs struct {
	files map[string]string
}

// NewTestProcfs builds a Procfs backed entirely by the given file
// contents, keyed the same way NewLocalProcfs's paths would read
// ("trace_clock", "events/sched/sched_switch/enable", "kallsyms", ...).
func NewTestProcfs(files map[string]string) Procfs {
	return &testProcfs{files: files}
}

func (t *testProcfs) ReadFtraceFile(filename string) ([]byte, error) {
	if !SafeFtracePath(filename) {
		return nil, ErrBadFtraceFileName
	}
	return []byte(t.files[filename]), nil
}

func (t *testProcfs) ReadProcFile(filename string) ([]byte, error) {
	if !SafeProcPath(filename) {
		return nil, ErrBadProcFileName
	}
	return []byte(t.files[filename]), nil
}

func (t *testProcfs) WriteFtraceFile(filename string, data []byte) error {
	if !SafeFtracePath(filename) {
		return ErrBadFtraceFileName
	}
	if t.files == nil {
		t.files = make(map[string]string)
	}
	t.files[filename] = string(data)
	return nil
}

func (t *testProcfs) OpenFtrace(filename string) (io.ReadCloser, error) {
	if !SafeFtracePath(filename) {
		return nil, ErrBadFtraceFileName
	}
	return &testReader{Reader: bytes.NewReader([]byte(t.files[filename]))}, nil
}

type testReader struct {
	*bytes.Reader
}

func (t *testReader) Close() error { return nil }

// SafeFtracePath rejects any path that attempts to escape the tracefs
// mount via "..".
func SafeFtracePath(p string) bool {
	for _, d := range strings.Split(filepath.ToSlash(p), "/") {
		if d == ".." {
			return false
		}
	}
	return true
}

// SafeProcPath allows only the small whitelist of /proc files ftrace
// output actually needs.
func SafeProcPath(p string) bool {
	return procFileWhitelist[p]
}

var procFileWhitelist = map[string]bool{
	"kallsyms": true,
}

func canMultilineBackquote(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < ' ' && c != '\t' && c != '\n') || c == '`' || c == 0x7f {
			return false
		}
	}
	return true
}
