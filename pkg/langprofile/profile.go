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

// Package langprofile holds the injected per-language configuration that
// lets the core's language-neutral algorithms (§4.A/B/D of SPEC_FULL.md)
// bind to a concrete source language. This implementation ships a Go
// profile; the core itself never hard-codes language syntax decisions that
// this package parameterises.
package langprofile

import "regexp"

// Profile is the injected language configuration referenced throughout
// SPEC_FULL.md §4.A/B/D and §6.
type Profile struct {
	// Name identifies the language this profile binds, e.g. "go".
	Name string

	// Builtins is the set of identifiers that are never considered a
	// "global read" even when unresolved in any active scope (§4.B rule 6).
	Builtins map[string]bool

	// ConstructorPrefix is the naming convention used to recognise
	// constructor functions for the "instance variables" extraction rule
	// (§4.A) — e.g. Go's "New" prefix, so NewService is the constructor
	// for Service.
	ConstructorPrefix string

	// AssertionHelperPattern matches call expressions that should count as
	// an "assertion" for cyclomatic purposes (§4.B) beyond the language's
	// own assert keyword — e.g. testify's require.*/assert.* family.
	AssertionHelperPattern *regexp.Regexp

	// LegacyCyclomatic selects the spec's excluded alternative cyclomatic
	// definition (§9 Open Questions): when true, boolean combinators do
	// NOT increment cyclomatic complexity. Defaults to false, matching the
	// spec's own resolution ("yes" - combinators do increment).
	LegacyCyclomatic bool

	// RecencyWindowDays is the git-history "recent touch" window (§4.I).
	RecencyWindowDays int
}

// Go returns the default profile used by this implementation's shipped Go
// AST adapter (pkg/astprovider/golang).
func Go() Profile {
	builtins := map[string]bool{}
	for _, n := range []string{
		"true", "false", "iota", "nil",
		"append", "cap", "close", "complex", "copy", "delete", "imag", "len",
		"make", "new", "panic", "print", "println", "real", "recover", "min", "max", "clear",
		"error", "string", "bool",
		"byte", "rune",
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128",
		"any", "comparable",
		"_",
	} {
		builtins[n] = true
	}

	return Profile{
		Name:                   "go",
		Builtins:               builtins,
		ConstructorPrefix:      "New",
		AssertionHelperPattern: regexp.MustCompile(`^(require|assert)\.[A-Za-z]+$`),
		LegacyCyclomatic:       false,
		RecencyWindowDays:      90,
	}
}

// IsBuiltin reports whether name is a language builtin under this profile.
func (p Profile) IsBuiltin(name string) bool {
	return p.Builtins[name]
}

// IsAssertionCall reports whether callee looks like an assertion-helper call
// under this profile (§4.B cyclomatic "assertion" branch).
func (p Profile) IsAssertionCall(callee string) bool {
	if p.AssertionHelperPattern == nil {
		return false
	}
	return p.AssertionHelperPattern.MatchString(callee)
}
