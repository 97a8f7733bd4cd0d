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

// Package astprovider defines the injected grammar/AST provider port
// (SPEC_FULL.md §4.A/§6). The core parser and complexity analyzer never
// import a concrete grammar library directly; they walk the generic Node
// tree this package describes, which a language-specific adapter (see
// pkg/astprovider/golang) produces from a grammar library.
package astprovider

// Kind is a coarse, language-neutral classification of an AST node. A
// provider maps its grammar's concrete node types onto this closed set so
// the core's algorithms (§4.A/B) never need to know the grammar's own
// vocabulary. Constructs a language lacks simply never appear in its
// provider's output (e.g. Go never emits KindComprehension).
type Kind int

const (
	KindOther Kind = iota
	KindSourceFile
	KindPackageClause
	KindImportDecl
	KindImportSpec
	KindFunctionDecl
	KindMethodDecl
	KindFuncLiteral
	KindTypeDecl
	KindStructType
	KindInterfaceType
	KindFieldDecl
	KindMethodSpec
	KindBlock
	KindIf
	KindFor
	KindSwitchStmt
	KindSwitchCase
	KindSelect
	KindCatch          // never produced by the Go adapter
	KindResourceScope  // never produced by the Go adapter
	KindComprehension  // never produced by the Go adapter
	KindConditionalExpr
	KindBooleanOp
	KindAssignment
	KindAugmentedAssignment
	KindShortVarDecl
	KindCall
	KindAttribute // selector expression (pkg.Name / recv.field)
	KindTypeAssertion
	KindIdentifier
	KindBreak
	KindContinue
	KindReturn
	KindGoStatement
	KindDeferStatement
	KindYield // never produced by the Go adapter
	KindAwait // never produced by the Go adapter
	KindComment
	KindCompositeLit
	KindVarDecl
	KindConstDecl
)

// Point is a zero-based row/column source position.
type Point struct {
	Row    int
	Column int
}

// Node is the language-neutral AST node the core walks. A provider's
// concrete node wraps its grammar library's node and satisfies this
// interface; field accessors mirror the named-field access used by
// tree-sitter grammars (ChildByFieldName), generalised across providers.
type Node interface {
	Kind() Kind
	// RawType returns the provider's own grammar node-type string, for
	// adapter-internal logic that needs finer resolution than Kind offers
	// (e.g. recognising a range_clause or a send_statement). Operators
	// such as "&&" and "||" are read from the "operator" field instead.
	RawType() string
	Start() Point
	End() Point
	// Content returns this node's exact source text.
	Content() string
	// Children returns this node's named children in source order.
	Children() []Node
	// ChildByFieldName returns the named child for the given grammar
	// field, or nil if absent. Mirrors tree-sitter's field accessors.
	ChildByFieldName(name string) Node
}

// ParseResult is the outcome of parsing one file's bytes (§4.A/§6).
type ParseResult struct {
	Root    Node
	Source  []byte
	Success bool
	Error   string
}

// Provider is the injected AST port (§6): `parse(language, bytes) → AST`.
// The core never owns an implementation of this interface.
type Provider interface {
	// Language identifies the single source language this provider parses,
	// e.g. "go". The core assumes one language per pipeline run (§1).
	Language() string
	Parse(source []byte) ParseResult
}
