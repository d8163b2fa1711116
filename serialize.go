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
	"encoding/gob"
	"fmt"
	"io"
	"reflect"
)

func init() {
	gob.Register(existsStamp(false))
	gob.Register(modifiedStamp(0))
	gob.Register(hashStamp{})
	gob.Register(inconsequentialStamp{})
	gob.Register(equalsStamp{})
	gob.Register(ExistsStamper{})
	gob.Register(ModifiedStamper{})
	gob.Register(HashStamper{})
	gob.Register(InconsequentialStamper{})
	gob.Register(EqualsStamper{})
}

// RegisterTaskType makes a Task implementation deserializable. It must be
// called once for every concrete Task type an Engine may intern, under the
// same tag that type's Tag method returns, before Deserialize is called.
// A stable string identifier mapped to a type-specific decoder is exactly
// what gob's own interface-value registry already provides.
func RegisterTaskType(tag string, zeroValue Task) {
	gob.RegisterName(tag, zeroValue)
}

// RegisterOutputType makes a task output type deserializable, under the
// given stable tag. It must be called for every concrete output type that
// may appear as a task's cached output or as the payload of an Equals
// output stamp, before Deserialize is called. Predeclared types (int,
// string, bool, ...) are already registered by gob under their own names,
// so for them the call does nothing and tag is not used.
func RegisterOutputType(tag string, zeroValue any) {
	if t := reflect.TypeOf(zeroValue); t != nil && t.PkgPath() == "" && t.Name() != "" {
		return
	}
	gob.RegisterName(tag, zeroValue)
}

type fileRecord struct {
	Path string
}

type taskRecord struct {
	Task      Task
	HasOutput bool
	Output    any
}

type edgeRecord struct {
	Kind          depKind
	FileIdx       int
	FileStamper   FileStamper
	FileStamp     FileStamp
	TaskIdx       int
	OutputStamper OutputStamper
	OutputStamp   OutputStamp
}

type snapshot struct {
	Files []fileRecord
	Tasks []taskRecord
	Edges [][]edgeRecord
}

// Serialize writes the engine's store (the interned node arrays plus the
// edge list with stamps) to w. Every concrete Task and task-output type
// that appears in the store must first have been registered with
// RegisterTaskType/RegisterOutputType, or encoding fails.
func (e *Engine) Serialize(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.store
	snap := snapshot{
		Files: make([]fileRecord, len(st.filePaths)),
		Tasks: make([]taskRecord, len(st.tasks)),
		Edges: make([][]edgeRecord, len(st.tasks)),
	}
	for i, p := range st.filePaths {
		snap.Files[i] = fileRecord{Path: p}
	}
	for i, t := range st.tasks {
		snap.Tasks[i] = taskRecord{Task: t, HasOutput: st.hasOutput[i], Output: st.outputs[i]}
	}
	for i, edges := range st.outEdges {
		recs := make([]edgeRecord, len(edges))
		for j, d := range edges {
			recs[j] = edgeRecord{
				Kind:          d.kind,
				FileIdx:       d.fileNode.idx,
				FileStamper:   d.fileStamper,
				FileStamp:     d.fileStamp,
				TaskIdx:       d.taskNode.idx,
				OutputStamper: d.outputStamper,
				OutputStamp:   d.outputStamp,
			}
		}
		snap.Edges[i] = recs
	}

	if err := gob.NewEncoder(w).Encode(&snap); err != nil {
		return fmt.Errorf("pie: serialize: %w", err)
	}
	return nil
}

// Deserialize reads a store previously written by Engine.Serialize and
// returns a new Engine over it, using tracker (nil meaning NoopTracker{}).
// Every concrete Task and task-output type that appears in the stream must
// first have been registered with RegisterTaskType/RegisterOutputType.
func Deserialize(r io.Reader, tracker Tracker) (*Engine, error) {
	if tracker == nil {
		tracker = NoopTracker{}
	}

	var snap snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("pie: deserialize: %w", err)
	}

	st := NewStore()
	st.filePaths = make([]string, len(snap.Files))
	for i, f := range snap.Files {
		st.filePaths[i] = f.Path
		st.fileByPath[f.Path] = FileNode{idx: i}
	}

	st.tasks = make([]Task, len(snap.Tasks))
	st.outputs = make([]any, len(snap.Tasks))
	st.hasOutput = make([]bool, len(snap.Tasks))
	st.outEdges = make([][]dependency, len(snap.Tasks))
	for i, tr := range snap.Tasks {
		st.tasks[i] = tr.Task
		st.outputs[i] = tr.Output
		st.hasOutput[i] = tr.HasOutput
		st.taskByValue[tr.Task] = TaskNode{idx: i}
	}

	for i, recs := range snap.Edges {
		edges := make([]dependency, len(recs))
		for j, r := range recs {
			fileNode := FileNode{idx: r.FileIdx}
			taskNode := TaskNode{idx: r.TaskIdx}
			d := dependency{
				kind:          r.Kind,
				fileNode:      fileNode,
				fileStamper:   r.FileStamper,
				fileStamp:     r.FileStamp,
				taskNode:      taskNode,
				outputStamper: r.OutputStamper,
				outputStamp:   r.OutputStamp,
			}
			if r.Kind == depRequireFile || r.Kind == depProvideFile {
				d.path = st.filePaths[r.FileIdx]
			}
			edges[j] = d

			switch r.Kind {
			case depRequireFile:
				set := st.fileConsumers[fileNode]
				if set == nil {
					set = map[TaskNode]bool{}
					st.fileConsumers[fileNode] = set
				}
				set[TaskNode{idx: i}] = true
			case depProvideFile:
				st.fileProvider[fileNode] = TaskNode{idx: i}
			case depRequireTask:
				set := st.dependents[taskNode]
				if set == nil {
					set = map[TaskNode]bool{}
					st.dependents[taskNode] = set
				}
				set[TaskNode{idx: i}] = true
			}
		}
		st.outEdges[i] = edges
	}

	return &Engine{store: st, tracker: tracker}, nil
}
