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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/model"
)

// fakeQuerier is a tiny in-process stand-in for a Datalog engine: rather
// than parse Datalog, it recognises the small set of query shapes
// RemoteStore itself generates and answers them against plain Go maps. It
// exists only to exercise RemoteStore's wiring (it builds the right request
// and decodes the right response shape), not to validate Datalog syntax.
type fakeQuerier struct {
	nodeAttrs map[string]string // id -> json attrs
	edges     []fakeEdge
}

type fakeEdge struct {
	source, target, relType string
	weight                  float64
	attrs                   string
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{nodeAttrs: map[string]string{}}
}

func (f *fakeQuerier) Execute(_ context.Context, datalog string) error {
	switch {
	case strings.Contains(datalog, ":put cg_node"):
		id, attrs := extractPutNode(datalog)
		f.nodeAttrs[id] = attrs
	case strings.Contains(datalog, ":put cg_edge"):
		f.edges = append(f.edges, extractPutEdge(datalog))
	case strings.Contains(datalog, ":rm cg_node"):
		f.nodeAttrs = map[string]string{}
	case strings.Contains(datalog, ":rm cg_edge"):
		f.edges = nil
	case strings.Contains(datalog, ":create"):
		// schema bootstrap, no-op for the fake
	}
	return nil
}

func (f *fakeQuerier) Query(_ context.Context, datalog string) (*QueryResult, error) {
	switch {
	case strings.HasPrefix(datalog, "?[id] := *cg_node{id}") && strings.Contains(datalog, "id =="):
		id := extractQuotedAfter(datalog, "id == ")
		if _, ok := f.nodeAttrs[id]; ok {
			return &QueryResult{Rows: [][]any{{id}}}, nil
		}
		return &QueryResult{}, nil
	case datalog == `?[id] := *cg_node{id}`:
		var rows [][]any
		for id := range f.nodeAttrs {
			rows = append(rows, []any{id})
		}
		return &QueryResult{Rows: rows}, nil
	case strings.HasPrefix(datalog, "?[attributes] := *cg_node"):
		id := extractQuotedAfter(datalog, "id == ")
		if attrs, ok := f.nodeAttrs[id]; ok {
			return &QueryResult{Rows: [][]any{{attrs}}}, nil
		}
		return &QueryResult{}, nil
	case strings.HasPrefix(datalog, "?[target] := *cg_edge"):
		src := extractQuotedAfter(datalog, "source == ")
		var rows [][]any
		for _, e := range f.edges {
			if e.source == src {
				rows = append(rows, []any{e.target})
			}
		}
		return &QueryResult{Rows: rows}, nil
	case strings.HasPrefix(datalog, "?[source] := *cg_edge"):
		tgt := extractQuotedAfter(datalog, "target == ")
		var rows [][]any
		for _, e := range f.edges {
			if e.target == tgt {
				rows = append(rows, []any{e.source})
			}
		}
		return &QueryResult{Rows: rows}, nil
	case strings.HasPrefix(datalog, "?[count(source)]"):
		return &QueryResult{Rows: [][]any{{int64(len(f.edges))}}}, nil
	case strings.Contains(datalog, "*cg_edge{source, target, rel_type, weight, attributes}"):
		var rows [][]any
		for _, e := range f.edges {
			rows = append(rows, []any{e.source, e.target, e.relType, e.weight, e.attrs})
		}
		return &QueryResult{Rows: rows}, nil
	}
	return &QueryResult{}, nil
}

func extractPutNode(datalog string) (id, attrs string) {
	start := strings.Index(datalog, "[[") + 2
	end := strings.Index(datalog, "]]")
	parts := strings.SplitN(datalog[start:end], `", "`, 2)
	id = strings.Trim(parts[0], `"`)
	if len(parts) > 1 {
		attrs = strings.Trim(parts[1], `"`)
	}
	return id, attrs
}

func extractPutEdge(datalog string) fakeEdge {
	start := strings.Index(datalog, "[[") + 2
	end := strings.Index(datalog, "]]")
	fields := strings.Split(datalog[start:end], ", ")
	e := fakeEdge{}
	if len(fields) >= 3 {
		e.source = strings.Trim(fields[0], `"`)
		e.target = strings.Trim(fields[1], `"`)
		e.relType = strings.Trim(fields[2], `"`)
	}
	return e
}

func extractQuotedAfter(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx == -1 {
		return ""
	}
	rest := s[idx+len(marker):]
	rest = strings.TrimPrefix(rest, `"`)
	end := strings.Index(rest, `"`)
	if end == -1 {
		return ""
	}
	return rest[:end]
}

func TestRemoteStore_AddAndQueryNode(t *testing.T) {
	ctx := context.Background()
	q := newFakeQuerier()
	s := NewRemoteStore(q)

	require.NoError(t, s.AddNode(ctx, Node{ID: "sample.go:Foo"}))
	has, err := s.HasNode(ctx, "sample.go:Foo")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRemoteStore_AddEdgeCreatesBothEndpoints(t *testing.T) {
	ctx := context.Background()
	q := newFakeQuerier()
	s := NewRemoteStore(q)

	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls, Weight: 0.9}))

	hasA, err := s.HasNode(ctx, "a")
	require.NoError(t, err)
	assert.True(t, hasA)

	succs, err := s.Successors(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, succs)
}

func TestRemoteStore_EdgeCount(t *testing.T) {
	ctx := context.Background()
	q := newFakeQuerier()
	s := NewRemoteStore(q)

	require.NoError(t, s.AddEdge(ctx, Edge{Source: "a", Target: "b", Type: model.RelCalls}))
	require.NoError(t, s.AddEdge(ctx, Edge{Source: "b", Target: "c", Type: model.RelCalls}))

	count, err := s.EdgeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
