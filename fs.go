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
)

// Metadata returns the os.FileInfo for path, nil if nothing exists there,
// or an error for anything else (permission denied, I/O error, ...).
//
// Symlinks are followed: the metadata describes whatever the path resolves
// to, not the link itself.
func Metadata(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info, nil
	}
	if os.IsNotExist(err) {
		return nil, nil
	}
	return nil, err
}

// OpenIfFile opens path for reading and returns the handle when path names a
// regular file. It returns (nil, nil) when path does not exist or names a
// directory (Windows-portable: opening a directory must never surface as an
// error), and an error for anything else.
func OpenIfFile(path string) (*os.File, error) {
	info, err := Metadata(path)
	if err != nil {
		return nil, err
	}
	if info == nil || info.IsDir() {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}
