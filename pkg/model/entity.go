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

// EntityKind discriminates the dictionary shape of a serialised entity (§6).
type EntityKind string

const (
	EntityFunction EntityKind = "function"
	EntityClass    EntityKind = "class"
	EntityImport   EntityKind = "import"
	EntityModule   EntityKind = "module"
	EntityVariable EntityKind = "variable"
)

// Parameter is a single function/method parameter.
type Parameter struct {
	Name                string `json:"name"`
	TypeHint            string `json:"type_hint,omitempty"`
	DefaultValue        string `json:"default_value,omitempty"`
	IsVariadicPositional bool  `json:"is_variadic_positional"`
	IsVariadicKeyword    bool  `json:"is_variadic_keyword"`
}

// StubDetection records whether a function body looks like a placeholder
// (empty return, "not implemented" error, panic-only body, ...). Carried
// from the teacher's stub-detection tooling as metadata that feeds the
// Impact Analyzer's recommendations; it never affects scoring.
type StubDetection struct {
	IsStub   bool     `json:"is_stub"`
	Reason   string   `json:"reason,omitempty"`
	Patterns []string `json:"patterns,omitempty"`
}

// FunctionEntity is a function or method (§3).
type FunctionEntity struct {
	// identity
	ID          string `json:"id"`
	Name        string `json:"name"`
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	ParentClass string `json:"parent_class,omitempty"`

	// shape
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"return_type,omitempty"`
	Decorators []string    `json:"decorators"`
	Docstring  string      `json:"docstring,omitempty"`

	// flags
	Async      bool `json:"async"`
	Generator  bool `json:"generator"`
	Method     bool `json:"method"`
	Static     bool `json:"static"`
	ClassMethod bool `json:"classmethod"`
	Property   bool `json:"property"`
	Abstract   bool `json:"abstract"`

	// metrics
	Cyclomatic  int `json:"cyclomatic"`
	Cognitive   int `json:"cognitive"`
	LinesOfCode int `json:"lines_of_code"`

	// outgoing references
	Calls []string `json:"calls"`

	// data flow
	ReadsGlobals  []string `json:"reads_globals"`
	WritesGlobals []string `json:"writes_globals"`

	// Go binding: the receiver identifier used in place of a fixed "self"
	// keyword (empty for free functions). See SPEC_FULL.md §3.
	ReceiverName string `json:"receiver_name,omitempty"`
	ReceiverType string `json:"receiver_type,omitempty"`

	// Stub is populated by the parser's best-effort placeholder detector;
	// it is informational metadata, not part of the spec's core metrics.
	Stub *StubDetection `json:"stub,omitempty"`
}

// Kind implements the entity-dictionary discriminator (§6).
func (f *FunctionEntity) Kind() EntityKind { return EntityFunction }

// ClassEntity is a class/struct/interface (§3).
type ClassEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	ParentClass string `json:"parent_class,omitempty"`

	Bases      []string `json:"bases"`
	Metaclass  string   `json:"metaclass,omitempty"`
	Decorators []string `json:"decorators"`

	Abstract  bool `json:"abstract"`
	DataClass bool `json:"dataclass"`
	Protocol  bool `json:"protocol"`

	MethodNames      []string `json:"method_names"`
	ClassVariables   []string `json:"class_variables"`
	InstanceVariables []string `json:"instance_variables"`
	NestedClasses    []string `json:"nested_classes"`
}

// InheritanceDepth is |bases|.
func (c *ClassEntity) InheritanceDepth() int { return len(c.Bases) }

// Kind implements the entity-dictionary discriminator (§6).
func (c *ClassEntity) Kind() EntityKind { return EntityClass }

// ImportEntity is a single import statement (§3).
type ImportEntity struct {
	File          string   `json:"file"`
	Line          int      `json:"line"`
	Module        string   `json:"module"`
	ImportedNames []string `json:"imported_names,omitempty"`
	Alias         string   `json:"alias,omitempty"`
	IsRelative    bool     `json:"is_relative"`
	IsStar        bool     `json:"is_star"`
	RelativeLevel int      `json:"relative_level"`
}

// Kind implements the entity-dictionary discriminator (§6).
func (i *ImportEntity) Kind() EntityKind { return EntityImport }

// ModuleEntity is the per-file record (§3).
type ModuleEntity struct {
	File      string   `json:"file"`
	Docstring string   `json:"docstring,omitempty"`
	AllExports []string `json:"all_exports"`

	TopLevelFunctions []string `json:"top_level_functions"`
	TopLevelClasses   []string `json:"top_level_classes"`
	TopLevelGlobals   []string `json:"top_level_globals"`

	TotalLines   int `json:"total_lines"`
	CodeLines    int `json:"code_lines"`
	CommentLines int `json:"comment_lines"`
	BlankLines   int `json:"blank_lines"`
}

// Kind implements the entity-dictionary discriminator (§6).
func (m *ModuleEntity) Kind() EntityKind { return EntityModule }
