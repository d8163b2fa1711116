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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExistsStamper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	absent, err := ExistsStamper{}.Stamp(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	present, err := ExistsStamper{}.Stamp(path)
	require.NoError(t, err)

	require.NotEqual(t, absent, present)

	require.NoError(t, os.WriteFile(path, []byte("y"), 0o644))
	stillPresent, err := ExistsStamper{}.Stamp(path)
	require.NoError(t, err)
	require.Equal(t, present, stillPresent)
}

func TestModifiedStamper_DetectsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	first, err := ModifiedStamper{}.Stamp(path)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := ModifiedStamper{}.Stamp(path)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestHashStamper_StableAcrossRewriteWithSameContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))

	first, err := HashStamper{}.Stamp(path)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("same"), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := HashStamper{}.Stamp(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestHashStamper_DetectsContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	first, err := HashStamper{}.Stamp(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	second, err := HashStamper{}.Stamp(path)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestEqualsStamper(t *testing.T) {
	require.Equal(t, EqualsStamper{}.Stamp(1), EqualsStamper{}.Stamp(1))
	require.NotEqual(t, EqualsStamper{}.Stamp(1), EqualsStamper{}.Stamp(2))
}

func TestInconsequentialStamper_AlwaysEqual(t *testing.T) {
	require.Equal(t, InconsequentialStamper{}.Stamp(1), InconsequentialStamper{}.Stamp("anything"))
}
