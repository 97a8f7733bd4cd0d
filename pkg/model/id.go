// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// maxLiteralIDBytes is the length above which a unique id is hashed instead
// of carried literally, keeping pathological paths from producing unbounded
// keys. Mirrors the 256-byte threshold used for file ids.
const maxLiteralIDBytes = 256

// NormalizePath normalizes a file path for consistent id generation: leading
// "./" is stripped, the path is cleaned, separators are forced to "/", and
// any leading "/" is removed so absolute and relative paths agree.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// UniqueID builds the spec's canonical id: file_path ":" [parent_class "."] name.
// When the resulting string would be unwieldy (pathologically long paths or
// names), it is hashed to a fixed-length form prefixed by the original file,
// so ids remain both stable and bounded.
func UniqueID(file, parentClass, name string) string {
	file = NormalizePath(file)
	var id string
	if parentClass != "" {
		id = file + ":" + parentClass + "." + name
	} else {
		id = file + ":" + name
	}
	if len(id) <= maxLiteralIDBytes {
		return id
	}
	hash := sha256.Sum256([]byte(id))
	return file + ":#" + hex.EncodeToString(hash[:16])
}

// FileID builds the id used for a ModuleEntity / file node: the normalized
// path itself, unless that path is pathologically long, in which case it is
// hashed. Signature text is never part of an id, so parser refinements to
// signature extraction never churn ids (carried over from the teacher's
// id-generation discipline).
func FileID(path string) string {
	n := NormalizePath(path)
	if len(n) <= maxLiteralIDBytes {
		return n
	}
	hash := sha256.Sum256([]byte(n))
	return "#" + hex.EncodeToString(hash[:16])
}
