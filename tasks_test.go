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
	"os"
	"strings"
)

// Return is a task with no dependencies that always produces the same
// output: the simplest possible task, used to exercise idempotent require.
type Return struct {
	Name  string
	Value int
}

func (t Return) String() string      { return fmt.Sprintf("Return(%s)", t.Name) }
func (t Return) Tag() string         { return "test.Return" }
func (t Return) Execute(*Context) any { return t.Value }

// ReadFile requires a single file with the given stamper and returns its
// contents as a string, or "" if the file does not exist.
type ReadFile struct {
	Path    string
	Stamper FileStamper
}

func (t ReadFile) String() string { return fmt.Sprintf("ReadFile(%s)", t.Path) }
func (t ReadFile) Tag() string    { return "test.ReadFile" }

func (t ReadFile) Execute(ctx *Context) any {
	stamper := t.Stamper
	if stamper == nil {
		stamper = DefaultFileStamper
	}
	f, err := ctx.RequireFile(t.Path, stamper)
	if err != nil {
		return ""
	}
	if f == nil {
		return ""
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(b)
}

// ToUpper requires a ReadFile-shaped task and uppercases its string output,
// demonstrating early cutoff: the required task may re-execute yet produce
// an unchanged output, so ToUpper itself need not re-execute.
type ToUpper struct {
	Inner Task
}

func (t ToUpper) String() string { return fmt.Sprintf("ToUpper(%s)", t.Inner) }
func (t ToUpper) Tag() string    { return "test.ToUpper" }

func (t ToUpper) Execute(ctx *Context) any {
	s := Require[string](ctx, t.Inner)
	return strings.ToUpper(s)
}

// WriteFile provides a file at Path with Contents, demonstrating the
// provide-file side of the hidden-dependency and overlap invariants.
type WriteFile struct {
	Path     string
	Contents string
}

func (t WriteFile) String() string { return fmt.Sprintf("WriteFile(%s)", t.Path) }
func (t WriteFile) Tag() string    { return "test.WriteFile" }

func (t WriteFile) Execute(ctx *Context) any {
	if err := os.WriteFile(t.Path, []byte(t.Contents), 0o644); err != nil {
		return err
	}
	if err := ctx.ProvideFileDefault(t.Path); err != nil {
		panic(err)
	}
	return nil
}

// ReadN requires N independent files (named by Paths) and returns their
// concatenated contents, used to exercise the bottom-up executor at scale.
// Paths holds the file paths joined by newlines, so that ReadN stays
// comparable as every Task must be; build one with newReadN.
type ReadN struct {
	Paths string
}

func newReadN(paths []string) ReadN { return ReadN{Paths: strings.Join(paths, "\n")} }

func (t ReadN) String() string {
	return fmt.Sprintf("ReadN(%d files)", len(strings.Split(t.Paths, "\n")))
}
func (t ReadN) Tag() string { return "test.ReadN" }

func (t ReadN) Execute(ctx *Context) any {
	var sb strings.Builder
	for _, p := range strings.Split(t.Paths, "\n") {
		sb.WriteString(Require[string](ctx, ReadFile{Path: p}))
	}
	return sb.String()
}
