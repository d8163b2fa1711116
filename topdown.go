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

// Session is per-build state borrowed exclusively from an Engine: the
// store, the tracker, and the accumulated I/O errors from consistency
// checks.
type Session struct {
	engine  *Engine
	store   *Store
	tracker Tracker

	errs []error
}

// Close releases the session's exclusive hold on its engine. A Session must
// not be used after Close.
func (s *Session) Close() {
	s.engine.mu.Unlock()
}

// DependencyCheckErrors returns the I/O errors collected while checking
// consistency during this session, most recent last.
func (s *Session) DependencyCheckErrors() []error {
	return s.errs
}

// Require is the top-down executor's entry point: it demands task, checking
// consistency and re-executing only what is necessary, and returns its
// up-to-date output.
func (s *Session) Require(task Task) (out any) {
	defer func() { s.engine.recoverPoisoning(recover()) }()
	return s.requireTaskFrom(invalidTaskNode, task, DefaultOutputStamper)
}

// requireTaskFrom implements Context.RequireTask when called with src valid
// (task is required by the currently executing task src) and Session.Require
// when called with src invalid (task is required directly by the caller, so
// there is nothing to reserve a require-task edge from).
func (s *Session) requireTaskFrom(src TaskNode, task Task, stamper OutputStamper) any {
	dst := s.store.InternTask(task)

	var resv *reservation
	if src.valid() {
		r, err := s.store.reserveRequireTask(src, dst)
		if err != nil {
			panic(err)
		}
		resv = r
	}

	s.tracker.RequireTaskStart(task)
	out := s.requireNode(dst)
	s.tracker.RequireTaskEnd(task, out)

	if resv != nil {
		s.store.finalizeRequireTask(resv, stamper, stamper.Stamp(out))
	}
	return out
}

// requireNode ensures node is up to date (re-executing it if necessary) and
// returns its output.
func (s *Session) requireNode(node TaskNode) any {
	if !s.store.HasOutput(node) || s.shouldExecute(node) {
		s.executeTask(node)
	}
	return s.store.Output(node)
}

// shouldExecute checks every outgoing dependency of node for consistency.
// Any single inconsistent (or unreadable) dependency means node must
// re-execute.
func (s *Session) shouldExecute(node TaskNode) bool {
	task := s.store.TaskOf(node)
	s.tracker.CheckDependencyStart(task)
	consistent := true
	for _, d := range s.store.OutEdges(node) {
		if !s.dependencyConsistent(d) {
			consistent = false
			break
		}
	}
	s.tracker.CheckDependencyEnd(task, consistent)
	return !consistent
}

func (s *Session) dependencyConsistent(d dependency) bool {
	switch d.kind {
	case depRequireFile:
		fresh, err := d.fileStamper.Stamp(d.path)
		if err != nil {
			s.errs = append(s.errs, err)
			return false
		}
		return fresh == d.fileStamp

	case depProvideFile:
		info, err := Metadata(d.path)
		if err != nil {
			s.errs = append(s.errs, err)
			return false
		}
		if info == nil {
			return false
		}
		fresh, err := d.fileStamper.Stamp(d.path)
		if err != nil {
			s.errs = append(s.errs, err)
			return false
		}
		return fresh == d.fileStamp

	case depRequireTask:
		out := s.requireNode(d.taskNode)
		fresh := d.outputStamper.Stamp(out)
		return fresh == d.outputStamp

	default:
		assertf(false, "pie: unknown dependency kind %v", d.kind)
		return false
	}
}

// executeTask resets node's prior edges and output, then runs its task,
// recording whatever dependencies the execution makes through the Context.
func (s *Session) executeTask(node TaskNode) {
	task := s.store.TaskOf(node)
	s.tracker.ExecuteStart(task)

	s.store.Reset(node)
	ctx := &Context{session: s, self: node}
	out := task.Execute(ctx)

	s.store.SetOutput(node, out)
	s.tracker.ExecuteEnd(task, out)
}

// requireFileFrom implements Context.RequireFile: it stamps path, records a
// require-file dependency from src, checks the hidden-dependency invariant,
// and returns the open file (or nil, nil for a missing path/directory).
func (s *Session) requireFileFrom(src TaskNode, path string, stamper FileStamper) (*os.File, error) {
	stamp, stampErr := stamper.Stamp(path)
	s.tracker.RequireFileEnd(path, stamper, stamp, stampErr)
	if stampErr != nil {
		return nil, stampErr
	}

	fileNode := s.store.InternFile(path)
	s.store.AddRequireFile(src, fileNode, stamper, stamp)

	if provider, ok := s.store.FileProvider(fileNode); ok && provider != src {
		if !s.store.reaches(src, provider) {
			panic(&HiddenDependencyError{
				Reader:   s.store.TaskOf(src),
				Provider: s.store.TaskOf(provider),
				Path:     path,
			})
		}
	}

	return OpenIfFile(path)
}

// provideFileFrom implements Context.ProvideFile: it checks the
// overlapping-provide invariant and the hidden-dependency invariant from the
// provider's side, then records a provide-file dependency from src.
func (s *Session) provideFileFrom(src TaskNode, path string, stamper FileStamper) error {
	fileNode := s.store.InternFile(path)

	if provider, ok := s.store.FileProvider(fileNode); ok && provider != src {
		panic(&OverlappingProvideError{
			First:  s.store.TaskOf(provider),
			Second: s.store.TaskOf(src),
			Path:   path,
		})
	}

	for _, consumer := range s.store.FileConsumers(fileNode) {
		if consumer != src && !s.store.reaches(consumer, src) {
			panic(&HiddenDependencyError{
				Reader:   s.store.TaskOf(consumer),
				Provider: s.store.TaskOf(src),
				Path:     path,
			})
		}
	}

	stamp, err := stamper.Stamp(path)
	if err != nil {
		return err
	}
	s.store.AddProvideFile(src, fileNode, stamper, stamp)
	return nil
}
