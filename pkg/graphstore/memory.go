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
	"fmt"
	"sort"
	"sync"

	"github.com/kraklabs/codeintel/pkg/model"
)

type edgeKey struct {
	source, target string
	t               model.RelationType
}

// MemoryStore is the in-process adjacency-based GraphStore implementation.
// It is the default backend: no external process, no network round trip.
type MemoryStore struct {
	mu sync.RWMutex

	nodes map[string]map[string]interface{}
	edges map[edgeKey]Edge

	out map[string][]edgeKey // source -> outgoing edge keys
	in  map[string][]edgeKey // target -> incoming edge keys
}

// NewMemoryStore returns an empty in-memory graph store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]map[string]interface{}),
		edges: make(map[edgeKey]Edge),
		out:   make(map[string][]edgeKey),
		in:    make(map[string][]edgeKey),
	}
}

func (s *MemoryStore) AddNode(_ context.Context, n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[n.ID]; !ok {
		s.nodes[n.ID] = map[string]interface{}{}
	}
	for k, v := range n.Attributes {
		s.nodes[n.ID][k] = v
	}
	return nil
}

func (s *MemoryStore) HasNode(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok, nil
}

func (s *MemoryStore) NodeAttributes(_ context.Context, id string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("graphstore: node %q not found", id)
	}
	return attrs, nil
}

func (s *MemoryStore) Nodes(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// AddEdge implicitly adds its endpoints as nodes if they are not already
// present, mirroring how the extractor emits edges for unresolved call
// targets that never got an explicit AddNode call.
func (s *MemoryStore) AddEdge(_ context.Context, e Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[e.Source]; !ok {
		s.nodes[e.Source] = map[string]interface{}{}
	}
	if _, ok := s.nodes[e.Target]; !ok {
		s.nodes[e.Target] = map[string]interface{}{}
	}
	key := edgeKey{e.Source, e.Target, e.Type}
	if _, exists := s.edges[key]; !exists {
		s.out[e.Source] = append(s.out[e.Source], key)
		s.in[e.Target] = append(s.in[e.Target], key)
	}
	s.edges[key] = e
	return nil
}

func (s *MemoryStore) HasEdge(_ context.Context, source, target string, t model.RelationType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.edges[edgeKey{source, target, t}]
	return ok, nil
}

func (s *MemoryStore) EdgeAttributes(_ context.Context, source, target string, t model.RelationType) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[edgeKey{source, target, t}]
	if !ok {
		return nil, fmt.Errorf("graphstore: edge %s-[%s]->%s not found", source, t, target)
	}
	return e.Attributes, nil
}

func (s *MemoryStore) EdgeCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges), nil
}

func typeAllowed(t model.RelationType, allowed []model.RelationType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Predecessors(_ context.Context, id string, types ...model.RelationType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, key := range s.in[id] {
		if typeAllowed(key.t, types) && !seen[key.source] {
			seen[key.source] = true
			out = append(out, key.source)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Successors(_ context.Context, id string, types ...model.RelationType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, key := range s.out[id] {
		if typeAllowed(key.t, types) && !seen[key.target] {
			seen[key.target] = true
			out = append(out, key.target)
		}
	}
	sort.Strings(out)
	return out, nil
}

// bfsClosure walks the graph following next(id) edges breadth-first,
// returning every node reached within maxDepth hops (0 = unbounded, but the
// visited set still bounds it since the graph is finite).
func (s *MemoryStore) bfsClosure(start string, maxDepth int, next func(edgeKey) bool, keysOf func(string) []edgeKey, target func(edgeKey) string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := map[string]bool{start: true}
	type frontierEntry struct {
		id    string
		depth int
	}
	queue := []frontierEntry{{start, 0}}
	var result []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth > 0 && cur.depth >= maxDepth {
			continue
		}
		for _, key := range keysOf(cur.id) {
			if !next(key) {
				continue
			}
			t := target(key)
			if visited[t] {
				continue
			}
			visited[t] = true
			result = append(result, t)
			queue = append(queue, frontierEntry{t, cur.depth + 1})
		}
	}
	sort.Strings(result)
	return result
}

func (s *MemoryStore) Ancestors(_ context.Context, id string, maxDepth int, types ...model.RelationType) ([]string, error) {
	allow := func(k edgeKey) bool { return typeAllowed(k.t, types) }
	return s.bfsClosure(id, maxDepth, allow, func(n string) []edgeKey { return s.in[n] }, func(k edgeKey) string { return k.source }), nil
}

func (s *MemoryStore) Descendants(_ context.Context, id string, maxDepth int, types ...model.RelationType) ([]string, error) {
	allow := func(k edgeKey) bool { return typeAllowed(k.t, types) }
	return s.bfsClosure(id, maxDepth, allow, func(n string) []edgeKey { return s.out[n] }, func(k edgeKey) string { return k.target }), nil
}

func (s *MemoryStore) InDegree(_ context.Context, id string, types ...model.RelationType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, key := range s.in[id] {
		if typeAllowed(key.t, types) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) OutDegree(_ context.Context, id string, types ...model.RelationType) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, key := range s.out[id] {
		if typeAllowed(key.t, types) {
			n++
		}
	}
	return n, nil
}

// BetweennessCentrality runs Brandes' algorithm treating every edge as
// unit-weight and direction-respecting, the standard choice for a call/
// reference graph where edge weight already encodes resolution confidence
// rather than traversal cost.
func (s *MemoryStore) BetweennessCentrality(_ context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	centrality := make(map[string]float64, len(s.nodes))
	nodeList := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		centrality[id] = 0
		nodeList = append(nodeList, id)
	}
	sort.Strings(nodeList)

	for _, src := range nodeList {
		stack := []string{}
		pred := map[string][]string{}
		sigma := map[string]float64{src: 1}
		dist := map[string]int{src: 0}
		queue := []string{src}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, key := range s.out[v] {
				w := key.target
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := map[string]float64{}
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				if sigma[w] == 0 {
					continue
				}
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != src {
				centrality[w] += delta[w]
			}
		}
	}
	return centrality, nil
}

// SimpleCycles enumerates elementary cycles with a Johnson-style search:
// plain DFS blocking, restarted from each node in turn and following only
// nodes that do not sort before the start node. No strongly connected
// component decomposition is done; this is sufficient for the call graphs
// this store holds (hundreds to low thousands of nodes, not millions).
func (s *MemoryStore) SimpleCycles(_ context.Context) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodeList := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		nodeList = append(nodeList, id)
	}
	sort.Strings(nodeList)

	var cycles [][]string
	blocked := map[string]bool{}
	blockedMap := map[string]map[string]bool{}
	var stack []string

	var unblock func(string)
	unblock = func(u string) {
		blocked[u] = false
		for w := range blockedMap[u] {
			delete(blockedMap[u], w)
			if blocked[w] {
				unblock(w)
			}
		}
	}

	var circuit func(v, start string) bool
	circuit = func(v, start string) bool {
		found := false
		stack = append(stack, v)
		blocked[v] = true

		for _, key := range s.out[v] {
			w := key.target
			if w == start {
				cycle := make([]string, len(stack))
				copy(cycle, stack)
				cycles = append(cycles, cycle)
				found = true
			} else if !blocked[w] && nodeGEQ(w, start) {
				if circuit(w, start) {
					found = true
				}
			}
		}

		if found {
			unblock(v)
		} else {
			for _, key := range s.out[v] {
				w := key.target
				if !nodeGEQ(w, start) {
					continue
				}
				if blockedMap[w] == nil {
					blockedMap[w] = map[string]bool{}
				}
				blockedMap[w][v] = true
			}
		}

		stack = stack[:len(stack)-1]
		return found
	}

	for _, start := range nodeList {
		blocked = map[string]bool{}
		blockedMap = map[string]map[string]bool{}
		stack = nil
		circuit(start, start)
	}

	return cycles, nil
}

// nodeGEQ orders nodes lexicographically so Johnson's algorithm only
// explores each subgraph once per start node.
func nodeGEQ(a, start string) bool { return a >= start }

func (s *MemoryStore) Density(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.nodes)
	if n < 2 {
		return 0, nil
	}
	return float64(len(s.edges)) / float64(n*(n-1)), nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]map[string]interface{})
	s.edges = make(map[edgeKey]Edge)
	s.out = make(map[string][]edgeKey)
	s.in = make(map[string][]edgeKey)
	return nil
}
