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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWritingTracker_ReportsExecuteCounts(t *testing.T) {
	var buf bytes.Buffer
	engine := New(NewWritingTracker(&buf))

	s := engine.NewSession()
	s.Require(Return{Name: "a", Value: 1})
	s.Close()

	out := buf.String()
	require.True(t, strings.Contains(out, "execute Return(a)"))
	require.True(t, strings.Contains(out, "done Return(a)"))
	require.True(t, strings.Contains(out, "[1 finished]"))
}

func TestCompositeTracker_FansOutToBoth(t *testing.T) {
	a := &EventTracker{}
	b := &EventTracker{}
	composite := CompositeTracker{First: a, Second: b}

	engine := New(composite)
	s := engine.NewSession()
	s.Require(Return{Name: "a", Value: 1})
	s.Close()

	require.Equal(t, 1, a.CountExecuteStart())
	require.Equal(t, 1, b.CountExecuteStart())
	if diff := cmp.Diff(a.Events, b.Events); diff != "" {
		t.Errorf("fanned-out event logs diverged (-first +second):\n%s", diff)
	}
}

func TestEventTracker_RecordsRequireFileOfMissingPathWithoutError(t *testing.T) {
	tracker := &EventTracker{}
	engine := New(tracker)

	s := engine.NewSession()
	s.Require(ReadFile{Path: "/does/not/exist/at/all"})
	s.Close()

	var sawRequireFile bool
	for _, e := range tracker.Events {
		if e.Kind == EventRequireFileEnd {
			sawRequireFile = true
			require.NoError(t, e.Err)
		}
	}
	require.True(t, sawRequireFile)
}
