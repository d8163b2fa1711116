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

// Task is a user-defined unit of computation. Its identity is its value: two
// Task values that compare equal with == are the same task, so concrete Task
// implementations must be comparable structs (no slices, maps, or funcs as
// fields), exactly the values Go already lets you use as map keys, which is
// what the store's task-interning map relies on. Go's value semantics give a
// Task its clone for free: a struct is copied on assignment.
//
// A Task's output (the return value of Execute) must likewise be comparable
// if it is ever required with the default EqualsStamper, since that stamper
// compares fresh and recorded outputs with ==.
type Task interface {
	fmt.Stringer

	// Tag returns a stable identifier for this task's concrete type: the tag
	// to pass to RegisterTaskType, under which Engine.Serialize/Deserialize
	// identify the type. The engine itself does not call Tag. It must be
	// unique across all registered Task implementations and must not change
	// across program versions that need to read each other's serialized
	// stores.
	Tag() string

	// Execute produces this task's output. It may call the three Context
	// methods to record dependencies on files and on other tasks; it must
	// not retain ctx or any value it returns (the File it returns from
	// RequireFile) beyond the call.
	Execute(ctx *Context) any
}
