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

// UpdateAffectedBy is the bottom-up executor's entry point. Given the set of
// paths that changed on disk, it propagates invalidation through the graph
// and re-executes only the tasks transitively affected by those changes,
// without traversing the parts of the graph that cannot have been touched.
func (s *Session) UpdateAffectedBy(changedPaths []string) {
	defer func() { s.engine.recoverPoisoning(recover()) }()
	s.tracker.BuildStart()
	defer s.tracker.BuildEnd()

	queued := map[TaskNode]bool{}
	executed := map[TaskNode]bool{}
	var queue []TaskNode

	enqueue := func(n TaskNode) {
		if !queued[n] {
			queued[n] = true
			queue = append(queue, n)
		}
	}

	for _, path := range changedPaths {
		fileNode, ok := s.store.fileByPath[path]
		if !ok {
			continue
		}
		for _, t := range s.store.FileConsumers(fileNode) {
			enqueue(t)
		}
		if provider, ok := s.store.FileProvider(fileNode); ok {
			enqueue(provider)
		}
	}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		queued[node] = false

		if executed[node] {
			continue
		}

		if s.bottomUpConsistent(node, executed) {
			continue
		}

		s.executeTask(node)
		executed[node] = true
		newOutput := s.store.Output(node)

		for _, dependent := range s.store.Dependents(node) {
			edge, ok := findRequireTaskEdge(s.store.OutEdges(dependent), node)
			if !ok {
				continue
			}
			if _, inconsequential := edge.outputStamper.(InconsequentialStamper); inconsequential {
				// An inconsequential edge is never made inconsistent by its
				// target's output, so the dependent need not be revisited.
				continue
			}
			// Leave edge.outputStamp untouched: bottomUpConsistent compares
			// it against node's fresh output when dependent is popped, and
			// only a real re-execution of dependent (via executeTask) is
			// allowed to bring it up to date. Updating it here would make
			// that later comparison trivially succeed and silently skip a
			// dependent whose input genuinely changed.
			if edge.outputStamper.Stamp(newOutput) == edge.outputStamp {
				continue
			}
			enqueue(dependent)
		}
	}
}

// bottomUpConsistent checks node's direct file dependencies, and its
// require-task dependencies whose target has already executed this
// bottom-up build (and so might now be stale). A require-task dependency
// whose target has not executed this round is left alone: that target is
// unreachable from the changed file set, so it cannot have changed.
func (s *Session) bottomUpConsistent(node TaskNode, executed map[TaskNode]bool) bool {
	task := s.store.TaskOf(node)
	s.tracker.CheckDependencyStart(task)
	consistent := true
	for _, d := range s.store.OutEdges(node) {
		switch d.kind {
		case depRequireFile, depProvideFile:
			if !s.dependencyConsistent(d) {
				consistent = false
			}
		case depRequireTask:
			if executed[d.taskNode] {
				fresh := d.outputStamper.Stamp(s.store.Output(d.taskNode))
				if fresh != d.outputStamp {
					consistent = false
				}
			}
		}
		if !consistent {
			break
		}
	}
	s.tracker.CheckDependencyEnd(task, consistent)
	return consistent
}

func findRequireTaskEdge(edges []dependency, target TaskNode) (dependency, bool) {
	for _, d := range edges {
		if d.kind == depRequireTask && d.taskNode == target {
			return d, true
		}
	}
	return dependency{}, false
}
