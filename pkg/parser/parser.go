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

// Package parser implements the Parser component (SPEC_FULL.md §4.A): it
// turns one file's bytes into the entities of §3 (a ModuleEntity, its
// FunctionEntities, ClassEntities and ImportEntities), delegating grammar
// work to an injected astprovider.Provider and complexity/scope work to
// pkg/complexity.
package parser

import (
	"strconv"
	"strings"

	"github.com/kraklabs/codeintel/pkg/astprovider"
	"github.com/kraklabs/codeintel/pkg/langprofile"
	"github.com/kraklabs/codeintel/pkg/model"
)

// ParsedFile is the per-file output of Parse, bundling every entity
// discovered in one file (§3, §4.A).
type ParsedFile struct {
	Module       model.ModuleEntity
	Functions    []model.FunctionEntity
	Classes      []model.ClassEntity
	Imports      []model.ImportEntity
	ParseSuccess bool
	ParseError   string
}

// Parse parses one file's source and extracts its entities. On a syntax
// error, tree-sitter's recovered partial tree is still walked and a
// ParsedFile is still returned, with ParseSuccess=false (§4.A, §7 ParseError
// is non-fatal and scoped to the file).
func Parse(provider astprovider.Provider, profile langprofile.Profile, path string, source []byte) ParsedFile {
	result := provider.Parse(source)

	pf := ParsedFile{
		Module: model.ModuleEntity{
			File: model.NormalizePath(path),
		},
		ParseSuccess: result.Root != nil && result.Error == "",
		ParseError:   result.Error,
	}
	if result.Root == nil {
		pf.ParseSuccess = false
		return pf
	}

	lines := strings.Split(string(source), "\n")
	pf.Module.TotalLines = len(lines)
	pf.Module.CodeLines, pf.Module.CommentLines, pf.Module.BlankLines = countLines(lines)

	w := &walker{
		path:    model.NormalizePath(path),
		profile: profile,
		globals: map[string]bool{},
	}
	w.collectPackageGlobals(result.Root)
	w.walkTop(result.Root)

	pf.Functions = w.functions
	pf.Classes = w.classes
	pf.Imports = w.imports
	pf.Module.Docstring = w.packageDoc
	pf.Module.TopLevelFunctions = names(w.functions, func(f model.FunctionEntity) string { return f.Name })
	pf.Module.TopLevelClasses = names(w.classes, func(c model.ClassEntity) string { return c.Name })
	pf.Module.TopLevelGlobals = w.globalOrder

	return pf
}

func names[T any](items []T, f func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

func countLines(lines []string) (code, comment, blank int) {
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		switch {
		case trimmed == "":
			blank++
		case strings.HasPrefix(trimmed, "//"):
			comment++
		default:
			code++
		}
	}
	return
}

type walker struct {
	path    string
	profile langprofile.Profile

	globals     map[string]bool
	globalOrder []string

	functions  []model.FunctionEntity
	classes    []model.ClassEntity
	imports    []model.ImportEntity
	packageDoc string

	// methodsByReceiver collects method simple-names per receiver type name,
	// filled in during walkTop and attached to ClassEntity.MethodNames once
	// all declarations have been seen.
	methodsByReceiver map[string][]string

	anonCounter int
}

// collectPackageGlobals does a shallow pass over source-level var/const
// declarations so the complexity analyzer can classify reads/writes before
// any function body is visited (order-independent, matching Go's own
// package-level declaration semantics).
func (w *walker) collectPackageGlobals(root astprovider.Node) {
	for _, c := range root.Children() {
		if c.Kind() != astprovider.KindVarDecl && c.Kind() != astprovider.KindConstDecl {
			continue
		}
		for _, spec := range c.Children() {
			nameField := spec.ChildByFieldName("name")
			if nameField == nil {
				continue
			}
			for _, n := range strings.Split(nameField.Content(), ",") {
				n = strings.TrimSpace(n)
				if n == "" || n == "_" {
					continue
				}
				if !w.globals[n] {
					w.globals[n] = true
					w.globalOrder = append(w.globalOrder, n)
				}
			}
		}
	}
}

func (w *walker) walkTop(root astprovider.Node) {
	w.methodsByReceiver = map[string][]string{}

	var pendingDoc string
	for _, c := range root.Children() {
		switch c.Kind() {
		case astprovider.KindComment:
			pendingDoc = appendDocLine(pendingDoc, c.Content())
			continue
		case astprovider.KindPackageClause:
			if pendingDoc != "" && w.packageDoc == "" {
				w.packageDoc = pendingDoc
			}
		case astprovider.KindImportDecl:
			w.imports = append(w.imports, w.extractImports(c)...)
		case astprovider.KindFunctionDecl:
			w.extractFunction(c, "", pendingDoc)
		case astprovider.KindMethodDecl:
			w.extractMethod(c, pendingDoc)
		case astprovider.KindTypeDecl:
			w.extractTypeDecl(c, pendingDoc)
		}
		pendingDoc = ""
	}

	for i := range w.classes {
		if w.classes[i].Protocol {
			continue // interface method specs were already set at extraction time
		}
		w.classes[i].MethodNames = w.methodsByReceiver[w.classes[i].Name]
	}

	w.walkNestedFunctions(root, "")
}

// walkNestedFunctions discovers every function literal at any depth,
// whether or not it is bound to a name, and extracts each as its own
// FunctionEntity named positionally ($anon_1, $anon_2, ...), mirroring the teacher's
// anonymous-function handling. Complexity for an enclosing function never
// descends into these (pkg/complexity stops at nested function nodes).
func (w *walker) walkNestedFunctions(n astprovider.Node, parentClass string) {
	if n == nil {
		return
	}
	for _, c := range n.Children() {
		if c.Kind() == astprovider.KindFuncLiteral {
			w.anonCounter++
			name := "$anon_" + strconv.Itoa(w.anonCounter)
			w.extractFunctionLiteral(c, name, parentClass)
		}
		w.walkNestedFunctions(c, parentClass)
	}
}

func appendDocLine(existing, line string) string {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "//"))
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
