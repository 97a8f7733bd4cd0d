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

// Package complexity implements the Scope & Complexity Analyzer
// (SPEC_FULL.md §4.B): cyclomatic and cognitive complexity, and
// scope-tracked global-access analysis, over the language-neutral AST
// exposed by pkg/astprovider.
package complexity

// scopeTracker maintains a stack of defined-name sets, implementing the
// traversal rules of §4.B. Unlike the distilled spec's Python model (which
// has explicit `global`/`nonlocal` declarations), the Go binding has no such
// declarations: a write is classified as a global write whenever its target
// does not resolve to any active local scope AND is known to be a
// package-level binding (see packageGlobals).
type scopeTracker struct {
	stack          []map[string]bool
	packageGlobals map[string]bool
}

func newScopeTracker(packageGlobals map[string]bool) *scopeTracker {
	t := &scopeTracker{packageGlobals: packageGlobals}
	t.push()
	return t
}

func (t *scopeTracker) push() {
	t.stack = append(t.stack, map[string]bool{})
}

func (t *scopeTracker) pop() {
	t.stack = t.stack[:len(t.stack)-1]
}

func (t *scopeTracker) defineLocal(name string) {
	if name == "" || name == "_" {
		return
	}
	t.stack[len(t.stack)-1][name] = true
}

// isLocal reports whether name is defined in any active scope.
func (t *scopeTracker) isLocal(name string) bool {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i][name] {
			return true
		}
	}
	return false
}

// classify resolves an identifier access to one of: local, global, unknown
// (neither a local binding nor a recognised package-level binding —
// e.g. an imported package name or a builtin; §4.B rule 6 excludes builtins
// from being treated as a global read, and an unrecognised name that is
// provably not a package-level variable/const is not a global either, since
// it is most likely a type, function or package selector).
type accessClass int

const (
	accessLocal accessClass = iota
	accessGlobal
	accessUnknown
)

func (t *scopeTracker) classify(name string) accessClass {
	if t.isLocal(name) {
		return accessLocal
	}
	if t.packageGlobals[name] {
		return accessGlobal
	}
	return accessUnknown
}
