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

/*
Package ftrace reconciles the configuration demands of multiple concurrent
tracing clients against the single, globally shared kernel ftrace facility
exposed through tracefs.

Basics:
Construct a Procfs (NewLocalProcfs for a real device, NewTestProcfs or
NewRecordingProcfs for replayable tests), wrap it in a ControlSurface with
NewTracefsControlSurface, load an EventCatalog with NewTableCatalog, and
pick an AtraceRunner (NewAtraceRunner, or a fake for tests). Hand all
three to NewFtraceConfigMuxer and call RequestConfig/RemoveConfig as
clients come and go.

The muxer does not spawn goroutines and is not safe for concurrent calls;
callers serialize their own requests, exactly as a single cooperative
owner of a shared kernel resource would.
*/

package ftrace
