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
	"strings"

	"github.com/pkg/errors"
)

// Event is the catalog's record for a user-visible event name: which
// (group, name) pair ftrace itself uses to address it.
type Event struct {
	Group string
	Name  string
}

// EventCatalog maps a user-visible event name to its ftrace (group, name)
// pair. The real translation table additionally carries field layout for
// ring-buffer decoding; that belongs to the separate decode engine, not
// the muxer.
type EventCatalog interface {
	GetEventByName(name string) (Event, bool)
}

type tableCatalog struct {
	byName map[string]Event
}

// NewTableCatalog builds an EventCatalog by parsing tracefs's
// available_events file, which lists one "group:name" pair per line.
// Lines without a colon are skipped.
func NewTableCatalog(fp Procfs) (EventCatalog, error) {
	raw, err := fp.ReadFtraceFile("available_events")
	if err != nil {
		return nil, errors.Wrap(err, "read available_events")
	}

	byName := make(map[string]Event)
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		group, name := parts[0], parts[1]
		byName[name] = Event{Group: group, Name: name}
	}
	return &tableCatalog{byName: byName}, nil
}

// NewStaticCatalog builds an EventCatalog directly from a fixed table,
// useful for tests and for hosts where available_events isn't present.
func NewStaticCatalog(events map[string]Event) EventCatalog {
	return &tableCatalog{byName: events}
}

func (c *tableCatalog) GetEventByName(name string) (Event, bool) {
	e, ok := c.byName[name]
	return e, ok
}
