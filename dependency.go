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

// depKind discriminates the three edge kinds a task node can have.
type depKind uint8

const (
	depRequireFile depKind = iota
	depProvideFile
	depRequireTask
)

// dependency is an outgoing edge from a task node, carrying the stamper that
// produced its recorded stamp and the stamp itself. A require-file and a
// provide-file dependency point at a file node via fileNode; a require-task
// dependency points at another task node via taskNode.
//
// A freshly reserved require-task dependency (see Store.reserveRequireTask)
// has taskNode set but outputStamper/outputStamp left zero until
// Store.finalizeRequireTask fills them in (its file fields stay zero);
// nothing reads a reservation's stamp fields before they are finalized.
type dependency struct {
	kind depKind

	path        string
	fileNode    FileNode
	fileStamper FileStamper
	fileStamp   FileStamp

	taskNode      TaskNode
	outputStamper OutputStamper
	outputStamp   OutputStamp
}
