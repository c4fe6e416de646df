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

package traceprocessor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteCountingProcessorParseAccumulates(t *testing.T) {
	p := NewByteCounting()

	require.True(t, p.Parse([]byte("abcd")))
	require.True(t, p.Parse([]byte("ef")))

	bytesParsed, pagesParsed := p.Stats()
	require.Equal(t, int64(6), bytesParsed)
	require.Equal(t, int64(2), pagesParsed)
}

func TestByteCountingProcessorNotifyEndOfFileIsNoop(t *testing.T) {
	p := NewByteCounting()
	p.Parse([]byte("x"))
	p.NotifyEndOfFile()

	bytesParsed, pagesParsed := p.Stats()
	require.Equal(t, int64(1), bytesParsed)
	require.Equal(t, int64(1), pagesParsed)
}

func TestByteCountingProcessorExecuteQueryNotImplemented(t *testing.T) {
	p := NewByteCounting()
	_, err := p.ExecuteQuery("select * from slice")
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestByteCountingProcessorSatisfiesInterface(t *testing.T) {
	var tp TraceProcessor = New()
	require.True(t, tp.Parse([]byte("x")))
	tp.InterruptQuery()
	tp.NotifyEndOfFile()
}
