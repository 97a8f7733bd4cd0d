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

// Package golang is the default AST provider (SPEC_FULL.md §4.A/§6)
// implementation, backed by tree-sitter's Go grammar. It is the one place
// in this module that imports a concrete grammar library; every other
// package walks the language-neutral astprovider.Node tree this package
// produces.
package golang

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/codeintel/pkg/astprovider"
)

// kindByType maps tree-sitter's Go grammar node-type strings onto the
// provider-neutral Kind enum. Types with no entry map to KindOther.
var kindByType = map[string]astprovider.Kind{
	"source_file":          astprovider.KindSourceFile,
	"package_clause":        astprovider.KindPackageClause,
	"import_declaration":    astprovider.KindImportDecl,
	"import_spec":           astprovider.KindImportSpec,
	"import_spec_list":      astprovider.KindOther,
	"function_declaration":  astprovider.KindFunctionDecl,
	"method_declaration":    astprovider.KindMethodDecl,
	"func_literal":          astprovider.KindFuncLiteral,
	"type_declaration":      astprovider.KindTypeDecl,
	"struct_type":           astprovider.KindStructType,
	"interface_type":        astprovider.KindInterfaceType,
	"field_declaration":     astprovider.KindFieldDecl,
	"method_spec":           astprovider.KindMethodSpec,
	"block":                 astprovider.KindBlock,
	"if_statement":          astprovider.KindIf,
	"for_statement":         astprovider.KindFor,
	"expression_switch_statement": astprovider.KindSwitchStmt,
	"type_switch_statement": astprovider.KindSwitchStmt,
	"expression_case":       astprovider.KindSwitchCase,
	"type_case":             astprovider.KindSwitchCase,
	"default_case":          astprovider.KindSwitchCase,
	"select_statement":      astprovider.KindSelect,
	"communication_case":    astprovider.KindSwitchCase,
	"binary_expression":     astprovider.KindBooleanOp, // only && / || count, see BooleanOperators
	"assignment_statement":  astprovider.KindAssignment,
	"short_var_declaration": astprovider.KindShortVarDecl,
	"call_expression":       astprovider.KindCall,
	"selector_expression":   astprovider.KindAttribute,
	"type_assertion_expression": astprovider.KindTypeAssertion,
	"identifier":            astprovider.KindIdentifier,
	"field_identifier":      astprovider.KindIdentifier,
	"package_identifier":    astprovider.KindIdentifier,
	"type_identifier":       astprovider.KindIdentifier,
	"break_statement":       astprovider.KindBreak,
	"continue_statement":    astprovider.KindContinue,
	"return_statement":      astprovider.KindReturn,
	"go_statement":          astprovider.KindGoStatement,
	"defer_statement":       astprovider.KindDeferStatement,
	"comment":               astprovider.KindComment,
	"composite_literal":     astprovider.KindCompositeLit,
	"var_declaration":       astprovider.KindVarDecl,
	"const_declaration":     astprovider.KindConstDecl,
}

func kindFor(nodeType string) astprovider.Kind {
	if k, ok := kindByType[nodeType]; ok {
		return k
	}
	return astprovider.KindOther
}

// BooleanOperators are the Go binary operators that count as a boolean
// combinator for cyclomatic/cognitive purposes (SPEC_FULL.md §4.B).
var BooleanOperators = map[string]bool{"&&": true, "||": true}

// node adapts a *sitter.Node to astprovider.Node.
type node struct {
	n    *sitter.Node
	src  []byte
}

func wrap(n *sitter.Node, src []byte) astprovider.Node {
	if n == nil {
		return nil
	}
	return node{n: n, src: src}
}

func (w node) Kind() astprovider.Kind { return kindFor(w.n.Type()) }
func (w node) RawType() string        { return w.n.Type() }

func (w node) Start() astprovider.Point {
	p := w.n.StartPoint()
	return astprovider.Point{Row: int(p.Row), Column: int(p.Column)}
}

func (w node) End() astprovider.Point {
	p := w.n.EndPoint()
	return astprovider.Point{Row: int(p.Row), Column: int(p.Column)}
}

func (w node) Content() string { return w.n.Content(w.src) }

func (w node) Children() []astprovider.Node {
	count := int(w.n.NamedChildCount())
	out := make([]astprovider.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, wrap(w.n.NamedChild(i), w.src))
	}
	return out
}

func (w node) ChildByFieldName(name string) astprovider.Node {
	return wrap(w.n.ChildByFieldName(name), w.src)
}

// Provider is the tree-sitter-backed Go AST provider.
type Provider struct{}

// New returns a Go astprovider.Provider.
func New() *Provider { return &Provider{} }

// Language implements astprovider.Provider.
func (p *Provider) Language() string { return "go" }

// Parse implements astprovider.Provider.
func (p *Provider) Parse(source []byte) astprovider.ParseResult {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return astprovider.ParseResult{Success: false, Error: err.Error(), Source: source}
	}

	root := tree.RootNode()
	if root == nil {
		return astprovider.ParseResult{Success: false, Error: "empty parse tree", Source: source}
	}
	if root.HasError() {
		// Tree-sitter is error-tolerant: a syntax error still yields a
		// best-effort tree. The spec requires later stages to still be
		// able to operate on whatever was recovered, so this is reported
		// as a partial success rather than a hard failure; the parser
		// package is the one that decides parse_success based on this.
		return astprovider.ParseResult{
			Root:    wrap(root, source),
			Source:  source,
			Success: true,
			Error:   "syntax errors recovered",
		}
	}

	return astprovider.ParseResult{Root: wrap(root, source), Source: source, Success: true}
}
