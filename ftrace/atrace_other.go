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

//go:build !android

package ftrace

import "go.uber.org/zap"

type noopAtraceRunner struct {
	log *zap.SugaredLogger
}

// NewAtraceRunner builds the off-Android AtraceRunner: it never spawns a
// process, only logs that atrace was requested but isn't supported here.
func NewAtraceRunner(log *zap.SugaredLogger) AtraceRunner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &noopAtraceRunner{log: log}
}

func (r *noopAtraceRunner) Run(argv []string) bool {
	r.log.Infow("atrace is only supported on Android, ignoring", "argv", argv)
	return true
}
