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

// Package pie implements the core of a programmatic incremental build
// engine: a dependency-graph store, a stamping/consistency model, and
// top-down (demand-driven) and bottom-up (change-driven) executors that
// re-run the minimum set of user-defined tasks needed to bring requested
// results up to date.
package pie

import "fmt"

// FileNode is an interned handle to a file path: an index into the Store
// that returned it from Store.InternFile. The zero value is index 0, the
// first file interned, not a null handle; invalidFileNode is the sentinel.
type FileNode struct{ idx int }

func (n FileNode) valid() bool { return n.idx >= 0 }

var invalidFileNode = FileNode{idx: -1}

// TaskNode is an interned handle to a task value: an index into the Store
// that returned it from Store.InternTask. The zero value is index 0, the
// first task interned, not a null handle; invalidTaskNode is the sentinel.
type TaskNode struct{ idx int }

func (n TaskNode) valid() bool { return n.idx >= 0 }

var invalidTaskNode = TaskNode{idx: -1}

// Store is the dependency graph: files and tasks interned into a dense
// arena of small-integer handles, with typed, directed edges between task
// nodes and the files/tasks they depend on. An Engine owns exactly one
// Store for its lifetime; nodes are never deleted.
type Store struct {
	filePaths  []string
	fileByPath map[string]FileNode

	tasks       []Task
	taskByValue map[Task]TaskNode
	outputs     []any
	hasOutput   []bool
	outEdges    [][]dependency

	// fileProvider[f] is the one task (if any) with a provide-file edge to f.
	fileProvider map[FileNode]TaskNode
	// fileConsumers[f] is the set of tasks with a require-file edge to f.
	fileConsumers map[FileNode]map[TaskNode]bool
	// dependents[t] is the set of tasks with a require-task edge to t.
	dependents map[TaskNode]map[TaskNode]bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		fileByPath:    map[string]FileNode{},
		taskByValue:   map[Task]TaskNode{},
		fileProvider:  map[FileNode]TaskNode{},
		fileConsumers: map[FileNode]map[TaskNode]bool{},
		dependents:    map[TaskNode]map[TaskNode]bool{},
	}
}

// InternFile returns the node for path, creating it on first reference.
func (st *Store) InternFile(path string) FileNode {
	if n, ok := st.fileByPath[path]; ok {
		return n
	}
	n := FileNode{idx: len(st.filePaths)}
	st.filePaths = append(st.filePaths, path)
	st.fileByPath[path] = n
	return n
}

// InternTask returns the node for task, creating it on first reference.
func (st *Store) InternTask(task Task) TaskNode {
	if n, ok := st.taskByValue[task]; ok {
		return n
	}
	n := TaskNode{idx: len(st.tasks)}
	st.tasks = append(st.tasks, task)
	st.outputs = append(st.outputs, nil)
	st.hasOutput = append(st.hasOutput, false)
	st.outEdges = append(st.outEdges, nil)
	st.taskByValue[task] = n
	return n
}

// PathOf returns the path a file node was interned with. It panics if n is
// not a node this Store produced: that indicates a stale handle, a bug in
// the caller.
func (st *Store) PathOf(n FileNode) string {
	assertf(n.idx >= 0 && n.idx < len(st.filePaths), "pie: unknown file node %v", n)
	return st.filePaths[n.idx]
}

// TaskOf returns the task a task node was interned with. It panics if n is
// not a node this Store produced.
func (st *Store) TaskOf(n TaskNode) Task {
	assertf(n.idx >= 0 && n.idx < len(st.tasks), "pie: unknown task node %v", n)
	return st.tasks[n.idx]
}

// HasOutput reports whether n has a cached output: it has executed at least
// once in this Store's lifetime and has not since been Reset.
func (st *Store) HasOutput(n TaskNode) bool {
	assertf(n.idx >= 0 && n.idx < len(st.tasks), "pie: unknown task node %v", n)
	return st.hasOutput[n.idx]
}

// Output returns n's cached output. It panics if n has no cached output;
// callers must check HasOutput first.
func (st *Store) Output(n TaskNode) any {
	assertf(st.HasOutput(n), "pie: task node %v has no cached output", n)
	return st.outputs[n.idx]
}

// SetOutput records out as n's cached output.
func (st *Store) SetOutput(n TaskNode, out any) {
	assertf(n.idx >= 0 && n.idx < len(st.tasks), "pie: unknown task node %v", n)
	st.outputs[n.idx] = out
	st.hasOutput[n.idx] = true
}

// OutEdges returns n's outgoing dependencies in the order they were
// recorded. The returned slice must not be mutated.
func (st *Store) OutEdges(n TaskNode) []dependency {
	assertf(n.idx >= 0 && n.idx < len(st.tasks), "pie: unknown task node %v", n)
	return st.outEdges[n.idx]
}

// Reset clears n's cached output and every outgoing edge it currently has,
// along with this store's reverse-index bookkeeping for those edges. It
// must be called immediately before re-executing a task, so the execution
// that follows records its current dependency set precisely rather than
// accumulating stale edges from a previous run.
func (st *Store) Reset(n TaskNode) {
	assertf(n.idx >= 0 && n.idx < len(st.tasks), "pie: unknown task node %v", n)
	for _, d := range st.outEdges[n.idx] {
		switch d.kind {
		case depRequireFile:
			if set := st.fileConsumers[d.fileNode]; set != nil {
				delete(set, n)
			}
		case depProvideFile:
			if provider, ok := st.fileProvider[d.fileNode]; ok && provider == n {
				delete(st.fileProvider, d.fileNode)
			}
		case depRequireTask:
			if set := st.dependents[d.taskNode]; set != nil {
				delete(set, n)
			}
		}
	}
	st.outEdges[n.idx] = nil
	st.outputs[n.idx] = nil
	st.hasOutput[n.idx] = false
}

// AddRequireFile records that src reads file, stamped by stamper as stamp.
// It is infallible: file nodes have no outgoing edges, so recording this
// edge can never create a cycle.
func (st *Store) AddRequireFile(src TaskNode, file FileNode, stamper FileStamper, stamp FileStamp) {
	st.outEdges[src.idx] = append(st.outEdges[src.idx], dependency{
		kind: depRequireFile, path: st.filePaths[file.idx], fileNode: file,
		fileStamper: stamper, fileStamp: stamp,
	})
	set := st.fileConsumers[file]
	if set == nil {
		set = map[TaskNode]bool{}
		st.fileConsumers[file] = set
	}
	set[src] = true
}

// AddProvideFile records that src produced file, stamped by stamper as
// stamp. It is infallible at the store level: uniqueness of the provider
// per path (invariant 2) is the executor's responsibility, checked via
// FileProvider before calling this.
func (st *Store) AddProvideFile(src TaskNode, file FileNode, stamper FileStamper, stamp FileStamp) {
	st.outEdges[src.idx] = append(st.outEdges[src.idx], dependency{
		kind: depProvideFile, path: st.filePaths[file.idx], fileNode: file,
		fileStamper: stamper, fileStamp: stamp,
	})
	st.fileProvider[file] = src
}

// FileProvider returns the task that provides file, if any.
func (st *Store) FileProvider(file FileNode) (TaskNode, bool) {
	n, ok := st.fileProvider[file]
	return n, ok
}

// FileConsumers returns the tasks with a require-file edge to file.
func (st *Store) FileConsumers(file FileNode) []TaskNode {
	set := st.fileConsumers[file]
	out := make([]TaskNode, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

// Dependents returns the tasks with a require-task edge to n, i.e. the
// tasks that require n.
func (st *Store) Dependents(n TaskNode) []TaskNode {
	set := st.dependents[n]
	out := make([]TaskNode, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out
}

// reservation is a require-task edge inserted before its destination's
// output is known, so that cycle detection happens before execution
// descends into the required task. Session.requireTaskFrom completes it
// with finalizeRequireTask once the callee's output (and hence its stamp)
// is available.
type reservation struct {
	src TaskNode
	idx int
}

// reaches reports whether from can reach to by following require-task
// edges forward, including incomplete reservations.
func (st *Store) reaches(from, to TaskNode) bool {
	if from == to {
		return true
	}
	visited := map[TaskNode]bool{from: true}
	stack := []TaskNode{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range st.outEdges[n.idx] {
			if d.kind != depRequireTask {
				continue
			}
			if d.taskNode == to {
				return true
			}
			if !visited[d.taskNode] {
				visited[d.taskNode] = true
				stack = append(stack, d.taskNode)
			}
		}
	}
	return false
}

// reserveRequireTask inserts a require-task edge from src to dst without a
// stamper/stamp, returning a CycleError (invariant 1) instead if dst
// already transitively reaches src.
func (st *Store) reserveRequireTask(src, dst TaskNode) (*reservation, error) {
	if st.reaches(dst, src) {
		return nil, &CycleError{From: st.TaskOf(src), To: st.TaskOf(dst)}
	}
	idx := len(st.outEdges[src.idx])
	st.outEdges[src.idx] = append(st.outEdges[src.idx], dependency{kind: depRequireTask, taskNode: dst})
	set := st.dependents[dst]
	if set == nil {
		set = map[TaskNode]bool{}
		st.dependents[dst] = set
	}
	set[src] = true
	return &reservation{src: src, idx: idx}, nil
}

// finalizeRequireTask fills in the stamper and stamp of a reservation, once
// the required task's up-to-date output is known.
func (st *Store) finalizeRequireTask(r *reservation, stamper OutputStamper, stamp OutputStamp) {
	e := &st.outEdges[r.src.idx][r.idx]
	e.outputStamper = stamper
	e.outputStamp = stamp
}

func (n FileNode) String() string { return fmt.Sprintf("FileNode(%d)", n.idx) }
func (n TaskNode) String() string { return fmt.Sprintf("TaskNode(%d)", n.idx) }
