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
	"crypto/sha256"
	"fmt"
	"io"
)

// FileStamp is a comparable summary of a file's state at a moment, produced
// by a FileStamper. Two stamps produced by the same stamper are equal iff
// the stamper judges the underlying states equivalent.
type FileStamp interface {
	isFileStamp()
}

type existsStamp bool

func (existsStamp) isFileStamp() {}

// absentModTime is the sentinel ModifiedStamper value for a path that does
// not exist.
const absentModTime int64 = -1

type modifiedStamp int64

func (modifiedStamp) isFileStamp() {}

// absentHash is the distinguished HashStamper value for a path that does
// not exist.
var absentHash = hashStamp{}

type hashStamp [sha256.Size]byte

func (hashStamp) isFileStamp() {}

// FileStamper is the policy used to compute a FileStamp from a path.
type FileStamper interface {
	Stamp(path string) (FileStamp, error)
	fmt.Stringer
}

// ExistsStamper stamps whether a regular file exists at a path. It is the
// cheapest and least precise file stamper: it is insensitive to content or
// mtime changes, so it only detects a file's creation or removal.
type ExistsStamper struct{}

func (ExistsStamper) Stamp(path string) (FileStamp, error) {
	info, err := Metadata(path)
	if err != nil {
		return nil, err
	}
	return existsStamp(info != nil && !info.IsDir()), nil
}

func (ExistsStamper) String() string { return "Exists" }

// ModifiedStamper stamps a path's last-modification time, or the sentinel
// absentModTime if nothing exists there. It is the default file stamper.
type ModifiedStamper struct{}

func (ModifiedStamper) Stamp(path string) (FileStamp, error) {
	info, err := Metadata(path)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return modifiedStamp(absentModTime), nil
	}
	return modifiedStamp(info.ModTime().UnixNano()), nil
}

func (ModifiedStamper) String() string { return "Modified" }

// HashStamper stamps a path's content hash, or the distinguished absentHash
// value if nothing exists there. It is the most precise and most expensive
// file stamper: it is insensitive to mtime-only changes (e.g. a rewrite with
// identical contents), enabling early cutoff at the file-read boundary.
type HashStamper struct{}

func (HashStamper) Stamp(path string) (FileStamp, error) {
	f, err := OpenIfFile(path)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return absentHash, nil
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	var sum hashStamp
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

func (HashStamper) String() string { return "Hash" }

// OutputStamp is a comparable summary of a task's output at a moment,
// produced by an OutputStamper.
type OutputStamp interface {
	isOutputStamp()
}

type inconsequentialStamp struct{}

func (inconsequentialStamp) isOutputStamp() {}

type equalsStamp struct {
	Value any
}

func (equalsStamp) isOutputStamp() {}

// OutputStamper is the policy used to compute an OutputStamp from a task's
// output.
type OutputStamper interface {
	Stamp(output any) OutputStamp
	fmt.Stringer
}

// InconsequentialStamper always produces the same stamp, so a require-task
// dependency stamped this way is never made inconsistent by its callee's
// output. It is used for fire-and-forget ordering dependencies: "run B
// before A, but A does not care what B produced".
type InconsequentialStamper struct{}

func (InconsequentialStamper) Stamp(any) OutputStamp { return inconsequentialStamp{} }

func (InconsequentialStamper) String() string { return "Inconsequential" }

// EqualsStamper stamps the output value itself, so a require-task dependency
// stamped this way is inconsistent iff the callee's fresh output differs
// from the recorded one. This is what gives early cutoff: a required task
// may re-execute yet produce an unchanged output, letting its dependents
// skip re-execution. It is the default output stamper.
//
// The output type must be comparable with ==; a non-comparable output
// (a slice, map, or func) panics the first time two stamps are compared.
type EqualsStamper struct{}

func (EqualsStamper) Stamp(output any) OutputStamp { return equalsStamp{Value: output} }

func (EqualsStamper) String() string { return "Equals" }

// DefaultFileStamper is the stamper Context.RequireFileDefault and
// Context.ProvideFileDefault use.
var DefaultFileStamper FileStamper = ModifiedStamper{}

// DefaultOutputStamper is the stamper Context.Require and Session.Require
// use.
var DefaultOutputStamper OutputStamper = EqualsStamper{}
