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

// Package registry implements the Entity Registry (SPEC_FULL.md §4.C): a
// write-once index over every entity discovered across a scan, addressable
// by id, by simple name, and by file. Indexing follows the same
// map-of-slices-by-key shape the pack uses for in-memory package symbol
// tables, generalised here to the spec's entity kinds.
package registry

import (
	"fmt"
	"sync"

	"github.com/kraklabs/codeintel/pkg/model"
)

// Registry is the write-once Entity Registry. Safe for concurrent Add calls
// during the build phase (§5 — per-file work runs in a worker pool); reads
// assume the build phase has completed, matching the spec's "read-mostly
// after construction" lifecycle (§3).
type Registry struct {
	mu sync.RWMutex

	byID   map[string]any
	byName map[string][]string // simple name -> ids
	byFile map[string][]string // file -> ids

	functions map[string]*model.FunctionEntity
	classes   map[string]*model.ClassEntity
	imports   map[string][]*model.ImportEntity
	modules   map[string]*model.ModuleEntity

	// interfacesByName and methodSets back best-effort IMPLEMENTS detection
	// (Go binding, §4.C): a type is considered to implement an interface
	// when its method set is a superset of the interface's method names,
	// with no actual type-checking.
	interfacesByName map[string]*model.ClassEntity
	methodSets       map[string]map[string]bool // type name -> method name set
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byID:             map[string]any{},
		byName:           map[string][]string{},
		byFile:           map[string][]string{},
		functions:        map[string]*model.FunctionEntity{},
		classes:          map[string]*model.ClassEntity{},
		imports:          map[string][]*model.ImportEntity{},
		modules:          map[string]*model.ModuleEntity{},
		interfacesByName: map[string]*model.ClassEntity{},
		methodSets:       map[string]map[string]bool{},
	}
}

// ErrDuplicateID is returned by Add when an id has already been written.
// The registry is write-once per id (§4.C): callers that re-parse a file
// must first remove its prior entities (not provided here — a full rescan
// discards and rebuilds the registry instead of mutating it in place).
type ErrDuplicateID struct{ ID string }

func (e ErrDuplicateID) Error() string { return fmt.Sprintf("registry: duplicate id %q", e.ID) }

// AddModule indexes one file's ModuleEntity.
func (r *Registry) AddModule(m model.ModuleEntity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := m
	r.modules[m.File] = &cp
	r.byFile[m.File] = append(r.byFile[m.File], m.File)
}

// AddFunction indexes a FunctionEntity by id, simple name, and file.
func (r *Registry) AddFunction(f model.FunctionEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[f.ID]; exists {
		return ErrDuplicateID{ID: f.ID}
	}
	cp := f
	r.byID[f.ID] = &cp
	r.functions[f.ID] = &cp
	r.byName[f.Name] = append(r.byName[f.Name], f.ID)
	r.byFile[f.File] = append(r.byFile[f.File], f.ID)

	if f.ReceiverType != "" {
		set := r.methodSets[f.ReceiverType]
		if set == nil {
			set = map[string]bool{}
			r.methodSets[f.ReceiverType] = set
		}
		set[f.Name] = true
	}
	return nil
}

// AddClass indexes a ClassEntity by id, simple name, and file.
func (r *Registry) AddClass(c model.ClassEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[c.ID]; exists {
		return ErrDuplicateID{ID: c.ID}
	}
	cp := c
	r.byID[c.ID] = &cp
	r.classes[c.ID] = &cp
	r.byName[c.Name] = append(r.byName[c.Name], c.ID)
	r.byFile[c.File] = append(r.byFile[c.File], c.ID)
	if c.Protocol {
		r.interfacesByName[c.Name] = &cp
	}
	return nil
}

// AddImport indexes an ImportEntity under its file.
func (r *Registry) AddImport(i model.ImportEntity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := i
	r.imports[i.File] = append(r.imports[i.File], &cp)
}

// Function looks up a function/method by its unique id.
func (r *Registry) Function(id string) (*model.FunctionEntity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.functions[id]
	return f, ok
}

// Class looks up a class/struct/interface by its unique id.
func (r *Registry) Class(id string) (*model.ClassEntity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[id]
	return c, ok
}

// Module looks up a file's ModuleEntity.
func (r *Registry) Module(file string) (*model.ModuleEntity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[file]
	return m, ok
}

// ImportsOf returns every import statement in a file.
func (r *Registry) ImportsOf(file string) []*model.ImportEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.ImportEntity(nil), r.imports[file]...)
}

// ByName returns every entity id registered under a simple name (§4.C —
// used by the Call Resolver's bare-name and class-name branches).
func (r *Registry) ByName(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byName[name]...)
}

// ByFile returns every entity id declared in a file.
func (r *Registry) ByFile(file string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.byFile[file]...)
}

// AllFunctions returns every registered function/method, in no particular
// order. Callers that need deterministic output should sort by ID.
func (r *Registry) AllFunctions() []*model.FunctionEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.FunctionEntity, 0, len(r.functions))
	for _, f := range r.functions {
		out = append(out, f)
	}
	return out
}

// AllClasses returns every registered class/struct/interface.
func (r *Registry) AllClasses() []*model.ClassEntity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.ClassEntity, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out
}

// Implements reports whether typeName's method set is a superset of
// ifaceName's method spec names — a best-effort, non-type-checked
// IMPLEMENTS signal (Go binding, §4.C/§4.E). Returns false if either name
// is unknown or the interface declares no methods (an empty interface is
// trivially satisfied by everything, which is not useful to report).
func (r *Registry) Implements(typeName, ifaceName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	iface, ok := r.interfacesByName[ifaceName]
	if !ok {
		return false
	}
	required := iface.MethodNames
	if len(required) == 0 {
		return false
	}
	have := r.methodSets[typeName]
	for _, m := range required {
		if !have[m] {
			return false
		}
	}
	return true
}
