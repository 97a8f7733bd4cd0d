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

// Package governance implements the Governance Engine (SPEC_FULL.md §4.H):
// layer classification, boundary-rule evaluation, a repository validator,
// and a drift detector.
package governance

import (
	"path/filepath"
	"sync"
)

// Layer is `{name, patterns[], allowed_dependencies[]}` (§4.H).
type Layer struct {
	Name                string
	Patterns            []string
	AllowedDependencies []string
}

// Action is a boundary rule's verdict.
type Action string

const (
	ActionAllow Action = "ALLOW"
	ActionWarn  Action = "WARN"
	ActionBlock Action = "BLOCK"
)

// Rule is `{from_layer, to_layer, action, message}` (§4.H).
type Rule struct {
	FromLayer string
	ToLayer   string
	Action    Action
	Message   string
}

// Classifier matches module paths to layers, memoising per path since the
// same path is classified repeatedly across a validator walk's many import
// edges (§4.H "Classification is memoised per path").
type Classifier struct {
	layers []Layer

	mu    sync.Mutex
	cache map[string]string // path -> layer name, "" = unclassified
}

// NewClassifier builds a Classifier over layers, evaluated in the order
// given (first matching pattern wins, mirroring boundary-rule precedence).
func NewClassifier(layers []Layer) *Classifier {
	return &Classifier{layers: layers, cache: make(map[string]string)}
}

// Classify returns the layer name owning path, or "" if unclassified.
func (c *Classifier) Classify(path string) string {
	norm := filepath.ToSlash(path)

	c.mu.Lock()
	if name, ok := c.cache[norm]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	name := c.classifyUncached(norm)

	c.mu.Lock()
	c.cache[norm] = name
	c.mu.Unlock()
	return name
}

func (c *Classifier) classifyUncached(path string) string {
	for _, layer := range c.layers {
		for _, pattern := range layer.Patterns {
			if ok, _ := filepath.Match(pattern, path); ok {
				return layer.Name
			}
		}
	}
	return ""
}

// LayerByName returns a layer's own rule, or false if unknown.
func LayerByName(layers []Layer, name string) (Layer, bool) {
	for _, l := range layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}
