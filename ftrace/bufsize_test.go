// Copyright 2018 The Android Open Source Project
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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCpuBufferSizeInPages(t *testing.T) {
	pageKb := hostPageSizeKb()

	tests := []struct {
		name        string
		requestedKb uint
		want        int
	}{
		{"zero means default", 0, defaultPerCpuBufferSizeKb / pageKb},
		{"above ceiling falls back to default, not ceiling", maxPerCpuBufferSizeKb + 1, defaultPerCpuBufferSizeKb / pageKb},
		{"far above ceiling still falls back to default", maxPerCpuBufferSizeKb * 100, defaultPerCpuBufferSizeKb / pageKb},
		{"exactly at ceiling is honored", maxPerCpuBufferSizeKb, maxPerCpuBufferSizeKb / pageKb},
		{"small in-range value", uint(pageKb), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCpuBufferSizeInPages(tt.requestedKb)
			require.Equal(t, tt.want, got)
			require.GreaterOrEqual(t, got, 1)
			require.LessOrEqual(t, got*pageKb, maxPerCpuBufferSizeKb)
		})
	}
}

func TestComputeCpuBufferSizeInPagesIdempotent(t *testing.T) {
	for _, kb := range []uint{0, 1, 512, 2048, 4096} {
		first := ComputeCpuBufferSizeInPages(kb)
		second := ComputeCpuBufferSizeInPages(kb)
		require.Equal(t, first, second)
	}
}
