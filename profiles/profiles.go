// Copyright 2021 Intel Corporation. All Rights Reserved.
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

// Package profiles loads named FtraceConfig presets from a YAML file, so
// a client can ask for "boot" or "scheduler" instead of spelling out
// event names on every invocation.
package profiles

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/LOS-M8916/android-external-perfetto/ftrace"
)

// Profile is one named, on-disk FtraceConfig preset.
type Profile struct {
	Name             string   `yaml:"name"`
	EventNames       []string `yaml:"event_names"`
	BufferSizeKb     uint     `yaml:"buffer_size_kb"`
	AtraceCategories []string `yaml:"atrace_categories"`
	AtraceApps       []string `yaml:"atrace_apps"`
}

// ToFtraceConfig converts the on-disk preset into the request type the
// muxer accepts.
func (p Profile) ToFtraceConfig() ftrace.FtraceConfig {
	return ftrace.FtraceConfig{
		EventNames:       p.EventNames,
		BufferSizeKb:     p.BufferSizeKb,
		AtraceCategories: p.AtraceCategories,
		AtraceApps:       p.AtraceApps,
	}
}

type document struct {
	Profiles []Profile `yaml:"profiles"`
}

// Load reads a YAML file of profiles and indexes them by name.
func Load(path string) (map[string]Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profiles file %q", path)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse profiles file %q", path)
	}

	byName := make(map[string]Profile, len(doc.Profiles))
	for _, p := range doc.Profiles {
		byName[p.Name] = p
	}
	return byName, nil
}
