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

// Package graphstore implements the Code Graph Store (SPEC_FULL.md §4.F): a
// directed multi-relation graph behind one interface, with interchangeable
// in-memory and remote (traversal-protocol) implementations.
package graphstore

import (
	"context"

	"github.com/kraklabs/codeintel/pkg/model"
)

// Node is anything the graph can hold: a function, class, import, module, or
// an unresolved call target recorded by its raw name.
type Node struct {
	ID         string
	Attributes map[string]interface{}
}

// Edge is one typed relationship between two node ids.
type Edge struct {
	Source     string
	Target     string
	Type       model.RelationType
	Weight     float64
	Attributes map[string]interface{}
}

// GraphStore is the interface every backend implements (§4.F). All
// traversals are bounded: the graph is finite, but a remote implementation
// may still need ctx to cancel a slow query.
type GraphStore interface {
	AddNode(ctx context.Context, n Node) error
	HasNode(ctx context.Context, id string) (bool, error)
	NodeAttributes(ctx context.Context, id string) (map[string]interface{}, error)
	Nodes(ctx context.Context) ([]string, error)

	AddEdge(ctx context.Context, e Edge) error
	HasEdge(ctx context.Context, source, target string, t model.RelationType) (bool, error)
	EdgeAttributes(ctx context.Context, source, target string, t model.RelationType) (map[string]interface{}, error)
	EdgeCount(ctx context.Context) (int, error)

	Predecessors(ctx context.Context, id string, types ...model.RelationType) ([]string, error)
	Successors(ctx context.Context, id string, types ...model.RelationType) ([]string, error)

	// Ancestors/Descendants are the transitive closure of Predecessors/
	// Successors, bounded by maxDepth (0 means unbounded — still finite,
	// since the graph is finite).
	Ancestors(ctx context.Context, id string, maxDepth int, types ...model.RelationType) ([]string, error)
	Descendants(ctx context.Context, id string, maxDepth int, types ...model.RelationType) ([]string, error)

	InDegree(ctx context.Context, id string, types ...model.RelationType) (int, error)
	OutDegree(ctx context.Context, id string, types ...model.RelationType) (int, error)

	// BetweennessCentrality returns an unnormalised betweenness score per
	// node, computed over the whole graph (Brandes' algorithm).
	BetweennessCentrality(ctx context.Context) (map[string]float64, error)

	// SimpleCycles enumerates elementary cycles (each as an ordered list of
	// node ids, first == last omitted). Empty on an acyclic graph.
	SimpleCycles(ctx context.Context) ([][]string, error)

	// Density is edge count over the maximum possible for a simple directed
	// graph of this order: |E| / (|V| * (|V|-1)). Zero on fewer than 2 nodes.
	Density(ctx context.Context) (float64, error)

	Clear(ctx context.Context) error
}
