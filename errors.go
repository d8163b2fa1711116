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

import "fmt"

// CycleError is panicked when adding a require-task edge would create a
// cycle in the require-task subgraph (invariant 1).
type CycleError struct {
	From Task
	To   Task
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("pie: cyclic task dependency: %s requires %s which transitively requires %s", e.From, e.To, e.From)
}

// HiddenDependencyError is panicked when a task reads a file that another
// task provides, without a require-task edge to that provider (invariant 3).
type HiddenDependencyError struct {
	Reader   Task
	Provider Task
	Path     string
}

func (e *HiddenDependencyError) Error() string {
	return fmt.Sprintf("pie: hidden dependency: %s reads %q which is provided by %s, but does not require it", e.Reader, e.Path, e.Provider)
}

// OverlappingProvideError is panicked when two distinct tasks both provide
// the same file path (invariant 2).
type OverlappingProvideError struct {
	First  Task
	Second Task
	Path   string
}

func (e *OverlappingProvideError) Error() string {
	return fmt.Sprintf("pie: overlapping provided file %q: already provided by %s, also provided by %s", e.Path, e.First, e.Second)
}

// assertf panics with a formatted message if cond is false. It is reserved
// for invariant violations that indicate a bug in the engine or in a caller
// misusing a stale node handle, never for ordinary operational failures.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
