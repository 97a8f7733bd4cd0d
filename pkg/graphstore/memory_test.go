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

package graphstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/model"
)

func buildChain(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.AddNode(ctx, Node{ID: id}))
	}
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls, Weight: 1.0}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "b", Target: "c", Type: model.RelCalls, Weight: 1.0}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "c", Target: "d", Type: model.RelCalls, Weight: 1.0}))
	return s
}

func TestMemoryStore_SuccessorsAndPredecessors(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	succs, err := s.Successors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, succs)

	preds, err := s.Predecessors(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, preds)
}

func TestMemoryStore_DescendantsTransitiveClosure(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	desc, err := s.Descendants(ctx, "a", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c", "d"}, desc)
}

func TestMemoryStore_DescendantsRespectsMaxDepth(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	desc, err := s.Descendants(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, desc)
}

func TestMemoryStore_AncestorsTransitiveClosure(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	anc, err := s.Ancestors(ctx, "d", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, anc)
}

func TestMemoryStore_InOutDegree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "c", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "x", Target: "a", Type: model.RelCalls}))

	out, err := s.OutDegree(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	in, err := s.InDegree(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, in)
}

func TestMemoryStore_BetweennessCentralityMiddleNodeScoresHighest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	// star-through-hub: a->hub, b->hub, hub->c, hub->d
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "hub", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "b", Target: "hub", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "hub", Target: "c", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "hub", Target: "d", Type: model.RelCalls}))

	centrality, err := s.BetweennessCentrality(ctx)
	require.NoError(t, err)
	assert.Greater(t, centrality["hub"], centrality["a"])
	assert.Greater(t, centrality["hub"], centrality["c"])
}

func TestMemoryStore_SimpleCyclesFindsTwoNodeCycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "b", Target: "a", Type: model.RelCalls}))

	cycles, err := s.SimpleCycles(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cycles)
}

func TestMemoryStore_SimpleCyclesEmptyOnAcyclicGraph(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	cycles, err := s.SimpleCycles(ctx)
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestMemoryStore_DensityOfTwoNodeGraph(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls}))

	density, err := s.Density(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, density, 1e-9) // 1 edge / (2*1) possible
}

func TestMemoryStore_DensityUnderTwoNodesIsZero(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AddNode(ctx, Node{ID: "a"}))

	density, err := s.Density(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, density)
}

func TestMemoryStore_ClearResetsGraph(t *testing.T) {
	ctx := context.Background()
	s := buildChain(t)

	require.NoError(t, s.Clear(ctx))
	nodes, err := s.Nodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	count, err := s.EdgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMemoryStore_TypeFilteredTraversal(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelInherits}))

	callOnly, err := s.Successors(ctx, "a", model.RelCalls)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, callOnly)

	both, err := s.Successors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, both) // two edge types to the same target still report one successor
}
