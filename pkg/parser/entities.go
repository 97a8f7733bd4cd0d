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

package parser

import (
	"strings"

	"github.com/kraklabs/codeintel/pkg/astprovider"
	"github.com/kraklabs/codeintel/pkg/complexity"
	"github.com/kraklabs/codeintel/pkg/model"
)

func (w *walker) extractFunction(n astprovider.Node, parentClass, doc string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content()
	params := w.extractParams(n.ChildByFieldName("parameters"))
	fe := w.buildFunctionEntity(n, name, parentClass, "", "", params, doc)
	w.functions = append(w.functions, fe)
}

func (w *walker) extractMethod(n astprovider.Node, doc string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Content()

	receiverName, receiverType := "", ""
	if recv := n.ChildByFieldName("receiver"); recv != nil {
		receiverName, receiverType = extractReceiver(recv)
	}

	params := w.extractParams(n.ChildByFieldName("parameters"))
	fe := w.buildFunctionEntity(n, name, receiverType, receiverName, receiverType, params, doc)
	fe.Method = true
	w.functions = append(w.functions, fe)

	if receiverType != "" {
		w.methodsByReceiver[receiverType] = append(w.methodsByReceiver[receiverType], name)
	}
}

func (w *walker) extractFunctionLiteral(n astprovider.Node, name, parentClass string) {
	params := w.extractParams(n.ChildByFieldName("parameters"))
	fe := w.buildFunctionEntity(n, name, parentClass, "", "", params, "")
	w.functions = append(w.functions, fe)
}

// buildFunctionEntity runs the complexity analyzer over the function body
// and assembles the FunctionEntity shared by all three call sites.
func (w *walker) buildFunctionEntity(n astprovider.Node, name, parentClass, receiverName, receiverType string, params []model.Parameter, doc string) model.FunctionEntity {
	body := n.ChildByFieldName("body")

	paramNames := make([]string, 0, len(params))
	for _, p := range params {
		paramNames = append(paramNames, p.Name)
	}

	result := complexity.Analyze(complexity.Input{
		Body:           body,
		Params:         paramNames,
		ReceiverName:   receiverName,
		OwnName:        name,
		Profile:        w.profile,
		PackageGlobals: w.globals,
	})

	startLine := n.Start().Row + 1
	endLine := n.End().Row + 1

	returnType := ""
	if resultNode := n.ChildByFieldName("result"); resultNode != nil {
		returnType = strings.TrimSpace(resultNode.Content())
	}

	fe := model.FunctionEntity{
		ID:            model.UniqueID(w.path, parentClass, name),
		Name:          name,
		File:          w.path,
		StartLine:     startLine,
		EndLine:       endLine,
		ParentClass:   parentClass,
		Parameters:    params,
		ReturnType:    returnType,
		Decorators:    []string{}, // Go has no decorator syntax (language binding)
		Docstring:     doc,
		Async:         result.Async,
		Generator:     result.Generator,
		Method:        receiverName != "" || parentClass != "",
		Cyclomatic:    result.Cyclomatic,
		Cognitive:     result.Cognitive,
		LinesOfCode:   endLine - startLine + 1,
		Calls:         collectCalls(body),
		ReadsGlobals:  result.ReadsGlobals,
		WritesGlobals: result.WritesGlobals,
		ReceiverName:  receiverName,
		ReceiverType:  receiverType,
	}
	if stub := detectStub(body, n.Content()); stub != nil {
		fe.Stub = stub
	}
	return fe
}

// extractParams reads a function's parameter_list, excluding nothing (Go has
// no implicit self/cls — the receiver is handled separately, §3 language
// binding note).
func (w *walker) extractParams(paramsNode astprovider.Node) []model.Parameter {
	if paramsNode == nil {
		return nil
	}
	var out []model.Parameter
	for _, field := range paramsNode.Children() {
		typeNode := field.ChildByFieldName("type")
		typeHint := ""
		if typeNode != nil {
			typeHint = typeNode.Content()
		}
		variadic := strings.Contains(field.Content(), "...")

		nameNode := field.ChildByFieldName("name")
		if nameNode != nil {
			out = append(out, model.Parameter{
				Name:                 nameNode.Content(),
				TypeHint:             typeHint,
				IsVariadicPositional: variadic,
			})
			continue
		}
		// unnamed parameter declaration: just a bare type
		out = append(out, model.Parameter{
			Name:                 "",
			TypeHint:             field.Content(),
			IsVariadicPositional: variadic,
		})
	}
	return out
}

func extractReceiver(recv astprovider.Node) (name, typ string) {
	for _, c := range recv.Children() {
		if nameNode := c.ChildByFieldName("name"); nameNode != nil {
			name = nameNode.Content()
		}
		if typeNode := c.ChildByFieldName("type"); typeNode != nil {
			typ = baseTypeName(typeNode)
		}
	}
	return name, typ
}

// baseTypeName strips pointer and generic-instantiation syntax down to the
// bare type name: *Server -> Server, Server[T] -> Server.
func baseTypeName(n astprovider.Node) string {
	text := strings.TrimSpace(n.Content())
	text = strings.TrimPrefix(text, "*")
	if idx := strings.Index(text, "["); idx > 0 {
		text = text[:idx]
	}
	return text
}

func (w *walker) extractImports(decl astprovider.Node) []model.ImportEntity {
	var out []model.ImportEntity
	for _, spec := range decl.Children() {
		if spec.Kind() != astprovider.KindImportSpec {
			continue
		}
		line := spec.Start().Row + 1
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		modulePath := strings.Trim(pathNode.Content(), `"`)

		alias := ""
		isStar := false
		if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
			switch nameNode.Content() {
			case ".":
				isStar = true // dot import: Go binding for star_imports (§3)
			case "_":
				alias = "_"
			default:
				alias = nameNode.Content()
			}
		}

		out = append(out, model.ImportEntity{
			File:       w.path,
			Line:       line,
			Module:     modulePath,
			Alias:      alias,
			IsStar:     isStar,
			IsRelative: false, // Go has no relative imports (§3 language binding)
		})
	}
	return out
}

func (w *walker) extractTypeDecl(n astprovider.Node, doc string) {
	for _, spec := range n.Children() {
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		name := nameNode.Content()

		ce := model.ClassEntity{
			ID:        model.UniqueID(w.path, "", name),
			Name:      name,
			File:      w.path,
			StartLine: spec.Start().Row + 1,
			EndLine:   spec.End().Row + 1,
			Bases:     []string{},
		}

		switch typeNode.Kind() {
		case astprovider.KindStructType:
			ce.Bases = embeddedFieldNames(typeNode)
			ce.InstanceVariables = namedFieldNames(typeNode)
		case astprovider.KindInterfaceType:
			ce.Protocol = true
			ce.Abstract = true
			ce.Bases = embeddedInterfaceNames(typeNode)
			ce.MethodNames = interfaceMethodNames(typeNode)
		default:
			// type alias / defined base type: not a class-shaped entity,
			// but still recorded so callers resolving by name find it.
		}

		w.classes = append(w.classes, ce)
	}
}

func embeddedFieldNames(structType astprovider.Node) []string {
	var out []string
	for _, field := range structType.Children() {
		if field.Kind() != astprovider.KindFieldDecl {
			continue
		}
		if field.ChildByFieldName("name") != nil {
			continue // named field, not embedded
		}
		// embedded_field carries no "name" field; depending on the grammar
		// version it may or may not expose a "type" field either, so fall
		// back to the field's own text when "type" is absent.
		if typeNode := field.ChildByFieldName("type"); typeNode != nil {
			out = append(out, baseTypeName(typeNode))
			continue
		}
		out = append(out, baseTypeName(field))
	}
	return out
}

func namedFieldNames(structType astprovider.Node) []string {
	var out []string
	for _, field := range structType.Children() {
		if field.Kind() != astprovider.KindFieldDecl {
			continue
		}
		if nameNode := field.ChildByFieldName("name"); nameNode != nil {
			for _, n := range strings.Split(nameNode.Content(), ",") {
				n = strings.TrimSpace(n)
				if n != "" {
					out = append(out, n)
				}
			}
		}
	}
	return out
}

func embeddedInterfaceNames(ifaceType astprovider.Node) []string {
	var out []string
	for _, c := range ifaceType.Children() {
		if c.Kind() == astprovider.KindMethodSpec {
			continue
		}
		// an embedded interface type_identifier, not a method_spec
		out = append(out, baseTypeName(c))
	}
	return out
}

func interfaceMethodNames(ifaceType astprovider.Node) []string {
	var out []string
	for _, c := range ifaceType.Children() {
		if c.Kind() != astprovider.KindMethodSpec {
			continue
		}
		if nameNode := c.ChildByFieldName("name"); nameNode != nil {
			out = append(out, nameNode.Content())
		}
	}
	return out
}

// collectCalls walks a function body collecting raw callee text for every
// call expression, unresolved (§4.A — resolution happens in pkg/resolver).
func collectCalls(body astprovider.Node) []string {
	if body == nil {
		return nil
	}
	var out []string
	var walk func(n astprovider.Node)
	walk = func(n astprovider.Node) {
		if n == nil {
			return
		}
		if n.Kind() == astprovider.KindFuncLiteral {
			return // nested function: its own calls belong to its own entity
		}
		if n.Kind() == astprovider.KindCall {
			if fn := n.ChildByFieldName("function"); fn != nil {
				out = append(out, strings.TrimSpace(fn.Content()))
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(body)
	return out
}

// detectStub approximates the teacher's placeholder-body detector: a body
// that is empty, a single bare return, or a single panic/"not implemented"
// call is flagged as a stub (SPEC_FULL.md §4.G supplement).
func detectStub(body astprovider.Node, fullText string) *model.StubDetection {
	if body == nil {
		return nil
	}
	stmts := body.Children()
	if len(stmts) == 0 {
		return &model.StubDetection{IsStub: true, Reason: "empty body"}
	}
	if len(stmts) == 1 {
		s := stmts[0]
		text := strings.ToLower(s.Content())
		switch {
		case s.Kind() == astprovider.KindReturn && strings.TrimSpace(s.Content()) == "return":
			return &model.StubDetection{IsStub: true, Reason: "single bare return", Patterns: []string{s.Content()}}
		case strings.Contains(text, "not implemented") || strings.Contains(text, "todo"):
			return &model.StubDetection{IsStub: true, Reason: "placeholder text", Patterns: []string{s.Content()}}
		case strings.HasPrefix(strings.TrimSpace(s.Content()), "panic("):
			return &model.StubDetection{IsStub: true, Reason: "panic-only body", Patterns: []string{s.Content()}}
		}
	}
	_ = fullText
	return nil
}
