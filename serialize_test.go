// Copyright 2011 Google Inc. All Rights Reserved.
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

package pie

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var registerSerializeTypesOnce sync.Once

func registerSerializeTypes() {
	registerSerializeTypesOnce.Do(func() {
		RegisterTaskType("test.Return", Return{})
		RegisterTaskType("test.ReadFile", ReadFile{})
		RegisterOutputType("test.int", 0)
		RegisterOutputType("test.string", "")
	})
}

func TestEngine_SerializeRoundTrip(t *testing.T) {
	registerSerializeTypes()

	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	engine := New(nil)
	s := engine.NewSession()
	out := s.Require(ReadFile{Path: path})
	s.Close()
	require.Equal(t, "hi", out)

	var buf bytes.Buffer
	require.NoError(t, engine.Serialize(&buf))

	restored, err := Deserialize(&buf, nil)
	require.NoError(t, err)

	s = restored.NewSession()
	out = s.Require(ReadFile{Path: path})
	s.Close()
	require.Equal(t, "hi", out)
}

func TestEngine_SerializeRoundTripPreservesEarlyCutoffState(t *testing.T) {
	registerSerializeTypes()

	engine := New(nil)
	s := engine.NewSession()
	s.Require(Return{Name: "a", Value: 7})
	s.Close()

	var buf bytes.Buffer
	require.NoError(t, engine.Serialize(&buf))

	tracker := &EventTracker{}
	restored, err := Deserialize(&buf, tracker)
	require.NoError(t, err)

	s = restored.NewSession()
	out := s.Require(Return{Name: "a", Value: 7})
	s.Close()
	require.Equal(t, 7, out)
	require.Equal(t, 0, tracker.CountExecuteStart())
}
