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

// AtraceRunner runs the Android atrace helper with a start/stop argument
// vector and reports whether it succeeded. argv[0] is always "atrace";
// the binary invoked is fixed at /system/bin/atrace.
type AtraceRunner interface {
	Run(argv []string) bool
}

const atraceBinaryPath = "/system/bin/atrace"
