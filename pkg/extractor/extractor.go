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

// Package extractor implements the Relationship Extractor (SPEC_FULL.md
// §4.E): one sweep per parsed file that emits every typed edge the Code
// Graph Store will hold, resolving calls via pkg/resolver and classifying
// inheritance/implementation via pkg/registry's best-effort checks.
package extractor

import (
	"strings"

	"github.com/kraklabs/codeintel/pkg/langprofile"
	"github.com/kraklabs/codeintel/pkg/model"
	"github.com/kraklabs/codeintel/pkg/parser"
	"github.com/kraklabs/codeintel/pkg/registry"
	"github.com/kraklabs/codeintel/pkg/resolver"
)

var containerTokens = map[string]bool{
	"map": true, "chan": true, "func": true, "interface": true,
	"struct": true, "error": true,
}

// Extract runs one sweep over a parsed file, emitting every relationship
// kind named in §4.E. reg and idx must already contain every entity/call
// index the whole repository produced (relationships may point across
// files), and imports is this file's ImportMapping.
func Extract(pf parser.ParsedFile, reg *registry.Registry, idx *resolver.Index, imports resolver.ImportMapping, profile langprofile.Profile) []model.Relationship {
	var rels []model.Relationship

	for _, fn := range pf.Functions {
		if fn.ParentClass == "" {
			rels = append(rels, contains(pf.Module.File, fn.ID, fn.StartLine))
		}
	}
	for _, cls := range pf.Classes {
		rels = append(rels, contains(pf.Module.File, cls.ID, cls.StartLine))
	}

	for _, imp := range pf.Imports {
		rels = append(rels, importEdge(pf.Module.File, imp))
	}

	for _, fn := range pf.Functions {
		rels = append(rels, extractFunctionEdges(fn, idx, imports, profile)...)
	}

	for _, cls := range pf.Classes {
		rels = append(rels, extractClassEdges(cls, pf.Functions, reg)...)
	}

	return rels
}

func contains(file, targetID string, line int) model.Relationship {
	return model.Relationship{
		SourceID: model.FileID(file),
		TargetID: targetID,
		Type:     model.RelContains,
		Weight:   1.0,
		Line:     line,
	}
}

func importEdge(file string, imp model.ImportEntity) model.Relationship {
	relType := model.RelImports
	target := imp.Module
	if len(imp.ImportedNames) > 0 {
		relType = model.RelImportsFrom
		target = imp.Module + "." + strings.Join(imp.ImportedNames, ",")
	}
	return model.Relationship{
		SourceID: model.FileID(file),
		TargetID: target,
		Type:     relType,
		Weight:   1.0,
		Line:     imp.Line,
	}
}

func extractFunctionEdges(fn model.FunctionEntity, idx *resolver.Index, imports resolver.ImportMapping, profile langprofile.Profile) []model.Relationship {
	var rels []model.Relationship

	for _, call := range fn.Calls {
		resolved := idx.Resolve(fn, call, imports)
		relType := model.RelCalls
		if resolved.ResolutionType == resolver.ResInstantiation {
			relType = model.RelInstantiates
		}
		target := resolved.TargetID
		if target == "" {
			target = call // unresolved: the edge still carries the raw name
		}
		rels = append(rels, model.Relationship{
			SourceID: fn.ID,
			TargetID: target,
			Type:     relType,
			Weight:   resolved.Confidence,
			Metadata: map[string]interface{}{"resolution_type": resolved.ResolutionType},
		})
	}

	for _, dec := range fn.Decorators {
		rels = append(rels, model.Relationship{SourceID: dec, TargetID: fn.ID, Type: model.RelDecorates, Weight: 1.0})
	}

	for _, tok := range tokenizeType(fn.ReturnType, profile) {
		rels = append(rels, model.Relationship{SourceID: fn.ID, TargetID: tok, Type: model.RelReturnsType, Weight: 1.0})
	}
	for _, p := range fn.Parameters {
		for _, tok := range tokenizeType(p.TypeHint, profile) {
			rels = append(rels, model.Relationship{SourceID: fn.ID, TargetID: tok, Type: model.RelUsesType, Weight: 1.0})
		}
	}

	for _, g := range fn.ReadsGlobals {
		rels = append(rels, model.Relationship{SourceID: fn.ID, TargetID: g, Type: model.RelReadsGlobal, Weight: 1.0})
	}
	for _, g := range fn.WritesGlobals {
		rels = append(rels, model.Relationship{SourceID: fn.ID, TargetID: g, Type: model.RelWritesGlobal, Weight: 1.0})
	}

	return rels
}

func extractClassEdges(cls model.ClassEntity, fileFunctions []model.FunctionEntity, reg *registry.Registry) []model.Relationship {
	var rels []model.Relationship

	for _, base := range cls.Bases {
		relType := model.RelInherits
		if baseIface, ok := lookupClass(reg, base); ok && baseIface.Protocol {
			relType = model.RelImplements
		}
		rels = append(rels, model.Relationship{SourceID: cls.ID, TargetID: base, Type: relType, Weight: 1.0})
	}

	for _, dec := range cls.Decorators {
		rels = append(rels, model.Relationship{SourceID: dec, TargetID: cls.ID, Type: model.RelDecorates, Weight: 1.0})
	}

	for _, methodName := range cls.MethodNames {
		if isPrivateByConvention(methodName) {
			continue
		}
		for _, base := range cls.Bases {
			if reg.Implements(cls.Name, base) {
				continue // already modeled as IMPLEMENTS, not an override
			}
			if id := findMethodOnType(reg, base, methodName); id != "" {
				ownID := ownMethodID(fileFunctions, cls.Name, methodName)
				if ownID != "" {
					rels = append(rels, model.Relationship{SourceID: ownID, TargetID: id, Type: model.RelOverrides, Weight: 1.0})
				}
			}
		}
	}

	for ifaceName := range interfaceCandidates(reg) {
		if reg.Implements(cls.Name, ifaceName) {
			rels = append(rels, model.Relationship{SourceID: cls.ID, TargetID: ifaceName, Type: model.RelImplements, Weight: 1.0})
		}
	}

	return rels
}

func isPrivateByConvention(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}

func lookupClass(reg *registry.Registry, name string) (*model.ClassEntity, bool) {
	for _, id := range reg.ByName(name) {
		if c, ok := reg.Class(id); ok {
			return c, true
		}
	}
	return nil, false
}

func findMethodOnType(reg *registry.Registry, typeName, method string) string {
	for _, id := range reg.ByName(method) {
		if fn, ok := reg.Function(id); ok && fn.ReceiverType == typeName {
			return id
		}
	}
	return ""
}

func ownMethodID(fns []model.FunctionEntity, typeName, method string) string {
	for _, fn := range fns {
		if fn.ReceiverType == typeName && fn.Name == method {
			return fn.ID
		}
	}
	return ""
}

// interfaceCandidates lists every Protocol-flagged class the registry
// knows about, for the Go-binding IMPLEMENTS sweep (§3/§4.E).
func interfaceCandidates(reg *registry.Registry) map[string]bool {
	out := map[string]bool{}
	for _, c := range reg.AllClasses() {
		if c.Protocol {
			out[c.Name] = true
		}
	}
	return out
}

// tokenizeType splits a type annotation string on brackets, commas and
// union pipes, dropping primitive/container tokens (§4.E).
func tokenizeType(s string, profile langprofile.Profile) []string {
	if s == "" {
		return nil
	}
	repl := strings.NewReplacer("[", " ", "]", " ", ",", " ", "|", " ", "*", " ", "(", " ", ")", " ")
	fields := strings.Fields(repl.Replace(s))

	seen := map[string]bool{}
	var out []string
	for _, tok := range fields {
		tok = strings.TrimSpace(tok)
		if tok == "" || profile.IsBuiltin(tok) || containerTokens[tok] {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
