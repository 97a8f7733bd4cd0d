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

// Package resolver implements the Call Resolver (SPEC_FULL.md §4.D): the
// six-branch, first-match-wins algorithm that turns a function's raw call
// strings into resolved (or explicitly unresolved) target ids.
package resolver

import (
	"runtime"
	"strings"
	"sync"

	"github.com/kraklabs/codeintel/pkg/model"
	"github.com/kraklabs/codeintel/pkg/registry"
)

// Resolution type tags recorded in ResolvedCall.Metadata["resolution_type"].
const (
	ResSelfMethod      = "self_method"
	ResInheritedMethod = "inherited_method"
	ResSuperMethod     = "super_method"
	ResSuperConstructor = "super_constructor"
	ResInstantiation   = "instantiation"
	ResModuleCall      = "module_call"
	ResObjectMethod    = "object_method"
	ResDirect          = "direct"
	ResGlobalByName    = "global_by_name"
	ResClass           = "class"
	ResUnresolved      = model.ResolutionUnresolved
)

// confidence values, one per branch of §4.D.
const (
	confSelfMethod       = 1.0
	confInheritedMethod  = 0.9
	confSuperMethod      = 0.95
	confInstantiation    = 1.0
	confModuleCall       = 0.9
	confObjectMethod     = 0.6
	confDirect           = 1.0
	confGlobalByName     = 0.8
	confClass            = 1.0
	confUnresolved       = model.UnresolvedWeight
)

// ImportMapping is one file's import table (§4.D). Go binding: name_imports
// is always empty (Go has no name-level imports); star_imports holds dot
// (`import . "pkg"`) import paths.
type ImportMapping struct {
	ModuleAliases map[string]string // alias -> import path
	StarImports   []string          // dot-imported import paths
}

// BuildImportMapping derives one file's ImportMapping from its ImportEntity
// list (SPEC_FULL.md §4.D), mirroring the teacher's per-file import index
// (pkg/ingestion/resolver.go's fileImports map).
func BuildImportMapping(imports []model.ImportEntity) ImportMapping {
	m := ImportMapping{ModuleAliases: map[string]string{}}
	for _, imp := range imports {
		if imp.IsStar {
			m.StarImports = append(m.StarImports, imp.Module)
			continue
		}
		alias := imp.Alias
		if alias == "_" {
			continue // blank import: never a call target
		}
		if alias == "" {
			alias = lastPathComponent(imp.Module)
		}
		m.ModuleAliases[alias] = imp.Module
	}
	return m
}

func lastPathComponent(p string) string {
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// ResolvedCall is the resolver's output for one raw call (§4.D).
type ResolvedCall struct {
	CallerID       string
	Original       string
	TargetID       string
	ResolutionType string
	Confidence     float64
}

// Index is the resolver's read-only, pre-built lookup structure, built once
// per run from the Entity Registry (SPEC_FULL.md §4.D). It is safe for
// concurrent Resolve calls once built, mirroring the teacher's
// "indices are read-only after BuildIndex" concurrency note.
type Index struct {
	reg *registry.Registry

	// packageFunctions: directory path -> exported simple name -> function id
	packageFunctions map[string]map[string]string
	// importPathToPackage: import path -> local directory path
	importPathToPackage map[string]string
	fileToPackage       map[string]string
}

// BuildIndex constructs an Index from every function the registry knows
// about (§4.D — "first, build an index of all functions and imports").
func BuildIndex(reg *registry.Registry, functionsByFile map[string][]model.FunctionEntity) *Index {
	idx := &Index{
		reg:                  reg,
		packageFunctions:     map[string]map[string]string{},
		importPathToPackage:  map[string]string{},
		fileToPackage:        map[string]string{},
	}

	for file, fns := range functionsByFile {
		pkgPath := dirOf(file)
		idx.fileToPackage[file] = pkgPath
		if idx.packageFunctions[pkgPath] == nil {
			idx.packageFunctions[pkgPath] = map[string]string{}
		}
		for _, fn := range fns {
			idx.packageFunctions[pkgPath][fn.Name] = fn.ID
		}
		idx.importPathToPackage[pkgPath] = pkgPath
	}

	return idx
}

func dirOf(file string) string {
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		return file[:idx]
	}
	return "."
}

// findPackage resolves an import path to a local package directory,
// trying a direct match then a suffix match (pkg/ingestion/resolver.go's
// findPackageByImportPath, generalised).
func (idx *Index) findPackage(importPath string) string {
	if p, ok := idx.importPathToPackage[importPath]; ok {
		return p
	}
	for pkgPath := range idx.packageFunctions {
		if strings.HasSuffix(importPath, pkgPath) {
			return pkgPath
		}
	}
	return ""
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

// Resolve runs the six-branch algorithm (§4.D) for one raw call string made
// by caller (identified by its FunctionEntity) within its file's import
// mapping.
func (idx *Index) Resolve(caller model.FunctionEntity, call string, imports ImportMapping) ResolvedCall {
	call = strings.TrimSpace(call)
	base := ResolvedCall{CallerID: caller.ID, Original: call}

	// Branch 1: self.<method>
	if caller.ReceiverName != "" && strings.HasPrefix(call, caller.ReceiverName+".") {
		method := call[len(caller.ReceiverName)+1:]
		if id := model.UniqueID(caller.File, caller.ReceiverType, method); idx.exists(id) {
			return withResolution(base, id, ResSelfMethod, confSelfMethod)
		}
		if cls, ok := idx.class(caller.ReceiverType, caller.File); ok {
			for _, base_ := range cls.Bases {
				if id := idx.methodOnType(base_, method); id != "" {
					return withResolution(base, id, ResInheritedMethod, confInheritedMethod)
				}
			}
		}
	}

	// Branch 2: super(...) — Go binding: <receiver>.<Embedded>.<method>()
	if strings.HasPrefix(call, "super(") || isEmbeddedSuperCall(call, caller, idx) {
		if cls, ok := idx.class(caller.ReceiverType, caller.File); ok && len(cls.Bases) > 0 {
			first := cls.Bases[0]
			method := methodNameFromSuperCall(call, caller)
			if method == "" {
				// bare super(): resolves the embedded type's constructor
				if id := idx.constructorOf(first); id != "" {
					return withResolution(base, id, ResSuperConstructor, confSuperMethod)
				}
			} else if id := idx.methodOnType(first, method); id != "" {
				return withResolution(base, id, ResSuperMethod, confSuperMethod)
			}
		}
	}

	// Branch 3: known class name (instantiation / New<Type> constructor)
	if className := classNameFromCall(call); className != "" {
		if _, ok := idx.class(className, ""); ok {
			if id := idx.constructorOf(className); id != "" {
				return withResolution(base, id, ResInstantiation, confInstantiation)
			}
			return withResolution(base, model.UniqueID("", "", className), ResInstantiation, confInstantiation)
		}
	}

	// Branch 4: dotted call
	if dot := strings.Index(call, "."); dot > 0 {
		head := call[:dot]
		tail := call[strings.LastIndex(call, ".")+1:]
		if importPath, ok := imports.ModuleAliases[head]; ok {
			pkgPath := idx.findPackage(importPath)
			if pkgPath != "" {
				if id, ok := idx.packageFunctions[pkgPath][tail]; ok {
					return withResolution(base, id, ResModuleCall, confModuleCall)
				}
			}
			return withResolution(base, "", ResUnresolved, confUnresolved)
		}
		// treat head as a local variable: search by tail name only
		for _, id := range idx.reg.ByName(tail) {
			return withResolution(base, id, ResObjectMethod, confObjectMethod)
		}
	}

	// Branch 5: bare name
	if !strings.Contains(call, ".") {
		for _, importPath := range imports.StarImports {
			pkgPath := idx.findPackage(importPath)
			if pkgPath == "" {
				continue
			}
			if id, ok := idx.packageFunctions[pkgPath][call]; ok {
				return withResolution(base, id, ResModuleCall, confModuleCall)
			}
		}
		pkgPath := idx.fileToPackage[caller.File]
		if id, ok := idx.packageFunctions[pkgPath][call]; ok {
			return withResolution(base, id, ResDirect, confDirect)
		}
		for _, id := range idx.reg.ByName(call) {
			return withResolution(base, id, ResGlobalByName, confGlobalByName)
		}
		if _, ok := idx.class(call, ""); ok {
			return withResolution(base, model.UniqueID("", "", call), ResClass, confClass)
		}
	}

	// Branch 6: fall through
	return withResolution(base, "", ResUnresolved, confUnresolved)
}

func withResolution(base ResolvedCall, id, resType string, confidence float64) ResolvedCall {
	base.TargetID = id
	base.ResolutionType = resType
	base.Confidence = confidence
	return base
}

func (idx *Index) exists(id string) bool {
	_, ok := idx.reg.Function(id)
	return ok
}

func (idx *Index) class(name, hintFile string) (*model.ClassEntity, bool) {
	if name == "" {
		return nil, false
	}
	for _, id := range idx.reg.ByName(name) {
		if c, ok := idx.reg.Class(id); ok {
			return c, true
		}
	}
	return nil, false
}

func (idx *Index) methodOnType(typeName, method string) string {
	for _, id := range idx.reg.ByName(method) {
		if fn, ok := idx.reg.Function(id); ok && fn.ReceiverType == typeName {
			return id
		}
	}
	return ""
}

func (idx *Index) constructorOf(typeName string) string {
	for _, id := range idx.reg.ByName("New" + typeName) {
		if fn, ok := idx.reg.Function(id); ok && !fn.Method {
			return id
		}
	}
	return ""
}

func isEmbeddedSuperCall(call string, caller model.FunctionEntity, idx *Index) bool {
	if caller.ReceiverName == "" {
		return false
	}
	cls, ok := idx.class(caller.ReceiverType, caller.File)
	if !ok || len(cls.Bases) == 0 {
		return false
	}
	prefix := caller.ReceiverName + "." + cls.Bases[0] + "."
	return strings.HasPrefix(call, prefix)
}

func methodNameFromSuperCall(call string, caller model.FunctionEntity) string {
	if strings.HasPrefix(call, "super(") {
		return "" // bare super(): constructor call
	}
	if idx := strings.LastIndex(call, "."); idx >= 0 {
		return call[idx+1:]
	}
	return ""
}

// classNameFromCall recognises a call as an instantiation only in its
// New<Type>(...) constructor form (Go binding, §4.D branch 3). A bare call
// naming a known type is not recognised here; Resolve's bare-name branch
// handles it.
func classNameFromCall(call string) string {
	name := call
	if idx := strings.Index(name, "("); idx >= 0 {
		name = name[:idx]
	}
	if strings.HasPrefix(name, "New") && len(name) > 3 && isUpper(name[3]) {
		return name[3:]
	}
	return ""
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

// ResolveAll resolves every function's raw Calls in parallel once the
// total number of raw calls reaches 1000, mirroring
// pkg/ingestion/resolver.go's sequential/parallel split with
// runtime.NumCPU() workers, capped at 8 (SPEC_FULL.md §5).
func ResolveAll(idx *Index, functions []model.FunctionEntity, importsByFile map[string]ImportMapping) []ResolvedCall {
	total := 0
	for _, fn := range functions {
		total += len(fn.Calls)
	}
	if total < 1000 {
		return resolveSequential(idx, functions, importsByFile)
	}
	return resolveParallel(idx, functions, importsByFile)
}

func resolveSequential(idx *Index, functions []model.FunctionEntity, importsByFile map[string]ImportMapping) []ResolvedCall {
	var out []ResolvedCall
	for _, fn := range functions {
		mapping := importsByFile[fn.File]
		for _, call := range fn.Calls {
			out = append(out, idx.Resolve(fn, call, mapping))
		}
	}
	return out
}

func resolveParallel(idx *Index, functions []model.FunctionEntity, importsByFile map[string]ImportMapping) []ResolvedCall {
	numWorkers := runtime.NumCPU()
	if numWorkers > 8 {
		numWorkers = 8
	}

	jobs := make(chan model.FunctionEntity, len(functions))
	results := make(chan []ResolvedCall, len(functions))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fn := range jobs {
				mapping := importsByFile[fn.File]
				var calls []ResolvedCall
				for _, call := range fn.Calls {
					calls = append(calls, idx.Resolve(fn, call, mapping))
				}
				results <- calls
			}
		}()
	}

	for _, fn := range functions {
		jobs <- fn
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []ResolvedCall
	for calls := range results {
		out = append(out, calls...)
	}
	return out
}
