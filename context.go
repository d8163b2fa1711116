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

import "os"

// Context is the capability a Task's Execute is given. It is the only way a
// task may record dependencies; a task never touches the Store directly.
// A Context must not be retained past the Execute call it was passed to.
type Context struct {
	session *Session
	self    TaskNode
}

// RequireTask records a dependency on task, guaranteeing task is up to date
// (executed if necessary, else consistency-checked) before returning its
// output, stamped with stamper for early-cutoff purposes.
func (c *Context) RequireTask(task Task, stamper OutputStamper) any {
	return c.session.requireTaskFrom(c.self, task, stamper)
}

// Require records a dependency on task using the DefaultOutputStamper
// (Equals) and returns its output.
func (c *Context) Require(task Task) any {
	return c.RequireTask(task, DefaultOutputStamper)
}

// RequireTask is the generic, type-asserting form of Context.RequireTask,
// for tasks whose output type is known at the call site.
func RequireTask[O any](c *Context, task Task, stamper OutputStamper) O {
	return c.RequireTask(task, stamper).(O)
}

// Require is the generic, type-asserting form of Context.Require.
func Require[O any](c *Context, task Task) O {
	return c.Require(task).(O)
}

// RequireFile records a dependency on reading path, stamped with stamper.
// It returns the open file when path names a regular file, (nil, nil) when
// path does not exist or names a directory, and an error for anything else.
// The caller owns the returned file and must close it.
func (c *Context) RequireFile(path string, stamper FileStamper) (*os.File, error) {
	return c.session.requireFileFrom(c.self, path, stamper)
}

// RequireFileDefault is Context.RequireFile with DefaultFileStamper
// (Modified).
func (c *Context) RequireFileDefault(path string) (*os.File, error) {
	return c.RequireFile(path, DefaultFileStamper)
}

// ProvideFile declares that the currently executing task has produced the
// file at path, stamped with stamper. It panics with *OverlappingProvideError
// if another task already provides path (invariant 2).
func (c *Context) ProvideFile(path string, stamper FileStamper) error {
	return c.session.provideFileFrom(c.self, path, stamper)
}

// ProvideFileDefault is Context.ProvideFile with DefaultFileStamper
// (Modified).
func (c *Context) ProvideFileDefault(path string) error {
	return c.ProvideFile(path, DefaultFileStamper)
}
