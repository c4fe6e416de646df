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

//go:build android

package ftrace

import (
	"os/exec"

	"go.uber.org/zap"
)

type execAtraceRunner struct {
	log *zap.SugaredLogger
}

// NewAtraceRunner builds the real AtraceRunner, forking /system/bin/atrace
// exactly as the original's RunAtrace did.
func NewAtraceRunner(log *zap.SugaredLogger) AtraceRunner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &execAtraceRunner{log: log}
}

func (r *execAtraceRunner) Run(argv []string) bool {
	if len(argv) == 0 {
		argv = []string{"atrace"}
	}
	cmd := exec.Command(atraceBinaryPath, argv[1:]...)
	cmd.Args[0] = "atrace"
	if err := cmd.Run(); err != nil {
		r.log.Errorw("atrace helper failed", "argv", argv, "err", err)
		return false
	}
	return true
}
