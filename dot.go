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
	"fmt"
	"io"

	"github.com/gammazero/toposort"
)

// TopologicalOrder returns the tasks currently interned in the store,
// ordered so that every task appears after every task it (transitively)
// requires. It fails with an error if the require-task subgraph contains a
// cycle, which should never happen given invariant 1 is maintained by every
// path that adds a require-task edge.
func (st *Store) TopologicalOrder() ([]Task, error) {
	var edges []toposort.Edge
	for i := range st.tasks {
		node := TaskNode{idx: i}
		hasRequires := false
		for _, d := range st.outEdges[i] {
			if d.kind != depRequireTask {
				continue
			}
			edges = append(edges, toposort.Edge{d.taskNode, node})
			hasRequires = true
		}
		if !hasRequires {
			edges = append(edges, toposort.Edge{node, nil})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("pie: require-task subgraph contains a cycle: %w", err)
	}

	out := make([]Task, 0, len(st.tasks))
	for _, v := range sorted {
		if v == nil {
			continue
		}
		out = append(out, st.TaskOf(v.(TaskNode)))
	}
	return out, nil
}

// WriteDOT writes a Graphviz DOT rendering of the store to w: one node per
// file and task, one edge per dependency, labeled with its kind. The walk
// covers require-file, provide-file, and require-task edges, producing a
// debuggable picture of an otherwise opaque dependency graph.
func (st *Store) WriteDOT(w io.Writer) error {
	fmt.Fprintln(w, "digraph pie {")
	fmt.Fprintln(w, `rankdir="LR"`)
	fmt.Fprintln(w, "node [fontsize=10, shape=box, height=0.25]")
	fmt.Fprintln(w, "edge [fontsize=10]")

	for i, path := range st.filePaths {
		fmt.Fprintf(w, "\"file%d\" [label=%q, shape=ellipse]\n", i, path)
	}
	for i, task := range st.tasks {
		fmt.Fprintf(w, "\"task%d\" [label=%q]\n", i, task.String())
	}
	for i := range st.tasks {
		for _, d := range st.outEdges[i] {
			switch d.kind {
			case depRequireFile:
				fmt.Fprintf(w, "\"task%d\" -> \"file%d\" [label=\"requires (%s)\"]\n", i, d.fileNode.idx, d.fileStamper)
			case depProvideFile:
				fmt.Fprintf(w, "\"task%d\" -> \"file%d\" [label=\"provides (%s)\", style=dashed]\n", i, d.fileNode.idx, d.fileStamper)
			case depRequireTask:
				fmt.Fprintf(w, "\"task%d\" -> \"task%d\" [label=\"requires\"]\n", i, d.taskNode.idx)
			}
		}
	}

	fmt.Fprintln(w, "}")
	return nil
}
