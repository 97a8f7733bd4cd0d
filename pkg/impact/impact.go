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

// Package impact implements the Impact Analyzer (SPEC_FULL.md §4.G):
// blast-radius calculation over pkg/graphstore, weighted risk scoring, and
// stub-awareness recommendations.
package impact

import (
	"context"
	"fmt"
	"strings"

	"github.com/kraklabs/codeintel/pkg/model"
)

const (
	maxNodesExplored   = 5000
	maxQueriesPerNode  = 1000
	cancelCheckEvery   = 100
)

// RiskWeights are the six fixed weights summing to 1.0 (§4.G). Exposed so
// pkg/config can apply operator-supplied overrides; overridden weights are
// not checked to still sum to 1.0.
type RiskWeights struct {
	Complexity      float64
	Centrality      float64
	TestCoverage    float64
	Dependency      float64
	ChangeFrequency float64
	BusFactor       float64
}

// DefaultRiskWeights returns the spec's fixed weights.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{
		Complexity:      0.25,
		Centrality:      0.20,
		TestCoverage:    0.20,
		Dependency:      0.15,
		ChangeFrequency: 0.10,
		BusFactor:       0.10,
	}
}

// RiskLevel is the bucketed overall score (§4.G).
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func levelFor(score float64) RiskLevel {
	switch {
	case score < 0.2:
		return RiskLow
	case score < 0.5:
		return RiskMedium
	case score < 0.8:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskFactors holds the six normalised [0,1] inputs to the overall score.
type RiskFactors struct {
	Complexity      float64
	Centrality      float64
	TestCoverage    float64
	Dependency      float64
	ChangeFrequency float64
	BusFactor       float64
}

// AffectedByType buckets blast-radius members by how they relate to target.
type AffectedByType struct {
	Callers    []string
	Inheritors []string
	TypeUsers  []string
}

// ComplexityLookup supplies a target's cyclomatic/cognitive score, sourced
// from the Scope & Complexity Analyzer's output (§4.B) recorded on
// FunctionEntity at parse time.
type ComplexityLookup func(id string) (cyclomatic, cognitive int, ok bool)

// GitRiskLookup supplies change_frequency_risk/bus_factor_risk from the Git
// History Analyzer (§4.I) when one ran; ok is false when no git data is
// available and the graph-degree fallback should be used instead.
type GitRiskLookup func(id string) (changeFrequency, busFactor float64, ok bool)

// StubLookup reports whether id is a detected stub/placeholder (§4.G
// "Additional: stub/placeholder awareness").
type StubLookup func(id string) (*model.StubDetection, bool)

// Graph is the subset of pkg/graphstore.GraphStore the analyzer needs.
type Graph interface {
	HasNode(ctx context.Context, id string) (bool, error)
	Predecessors(ctx context.Context, id string, types ...model.RelationType) ([]string, error)
	Successors(ctx context.Context, id string, types ...model.RelationType) ([]string, error)
	Ancestors(ctx context.Context, id string, maxDepth int, types ...model.RelationType) ([]string, error)
	InDegree(ctx context.Context, id string, types ...model.RelationType) (int, error)
	OutDegree(ctx context.Context, id string, types ...model.RelationType) (int, error)
	BetweennessCentrality(ctx context.Context) (map[string]float64, error)
}

// ImpactAssessment is calculate_blast_radius's result (§4.G).
type ImpactAssessment struct {
	Target          string
	DirectCallers   []string
	IndirectCallers []string
	AllAffected     []string
	AffectedTests   []string
	AffectedByType  AffectedByType
	Factors         RiskFactors
	OverallScore    float64
	Level           RiskLevel
	Recommendations []string
}

// Analyzer bundles the optional complexity/git/stub lookups alongside the
// graph so CalculateBlastRadius doesn't need half a dozen parameters.
type Analyzer struct {
	Graph      Graph
	Complexity ComplexityLookup
	GitRisk    GitRiskLookup
	Stub       StubLookup
	Weights    RiskWeights
}

// New returns an Analyzer with default weights; Complexity/GitRisk/Stub may
// be left nil, in which case their fallback formulas apply.
func New(graph Graph) *Analyzer {
	return &Analyzer{Graph: graph, Weights: DefaultRiskWeights()}
}

// CalculateBlastRadius implements §4.G's algorithm end to end.
func (a *Analyzer) CalculateBlastRadius(ctx context.Context, target string) (ImpactAssessment, error) {
	has, err := a.Graph.HasNode(ctx, target)
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("impact: check node: %w", err)
	}
	if !has {
		return ImpactAssessment{Target: target, Level: RiskLow}, nil
	}

	direct, err := a.Graph.Predecessors(ctx, target, model.RelCalls)
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("impact: direct callers: %w", err)
	}

	allAffectedRaw, err := a.Graph.Ancestors(ctx, target, 0)
	if err != nil {
		return ImpactAssessment{}, fmt.Errorf("impact: ancestors: %w", err)
	}
	allAffected := removeSelf(allAffectedRaw, target)

	directSet := toSet(direct)
	var indirect []string
	for _, id := range allAffected {
		if !directSet[id] {
			indirect = append(indirect, id)
		}
	}

	affectedTests := filterTests(allAffected)
	byType := classifyAffected(ctx, a.Graph, target, allAffected, directSet)

	factors, err := a.computeFactors(ctx, target, direct, indirect, affectedTests)
	if err != nil {
		return ImpactAssessment{}, err
	}

	score := a.overallScore(factors)
	level := levelFor(score)
	recs := a.recommendations(target, factors, allAffected)

	return ImpactAssessment{
		Target:          target,
		DirectCallers:   direct,
		IndirectCallers: indirect,
		AllAffected:     allAffected,
		AffectedTests:   affectedTests,
		AffectedByType:  byType,
		Factors:         factors,
		OverallScore:    score,
		Level:           level,
		Recommendations: recs,
	}, nil
}

func removeSelf(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// filterTests matches the literal "test" substring / "test_" prefix rule
// plus the Go binding: _test.go file paths and Test-prefixed function
// names (idiomatic Go convention, §4.G Go binding note).
func filterTests(ids []string) []string {
	var out []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		name := id
		if idx := strings.LastIndex(id, ":"); idx != -1 {
			name = id[idx+1:]
		}
		switch {
		case strings.Contains(lower, "test"):
			out = append(out, id)
		case strings.HasPrefix(lower, "test_"):
			out = append(out, id)
		case strings.Contains(id, "_test.go"):
			out = append(out, id)
		case strings.HasPrefix(name, "Test"):
			out = append(out, id)
		}
	}
	return out
}

// classifyAffected buckets each affected id by the first relation type
// connecting it toward target or another affected entity. This issues a
// bounded number of Successors probes per affected node, capped by
// maxNodesExplored the same way trace.go's BFS caps its own traversal,
// since a node with a very large blast radius must still return promptly.
func classifyAffected(ctx context.Context, g Graph, target string, affected []string, direct map[string]bool) AffectedByType {
	var out AffectedByType
	scope := toSet(affected)
	scope[target] = true

	explored, queries := 0, 0
	for _, id := range affected {
		if explored >= maxNodesExplored || queries >= maxQueriesPerNode {
			break
		}
		explored++

		if explored%cancelCheckEvery == 0 {
			select {
			case <-ctx.Done():
				return out
			default:
			}
		}

		if direct[id] {
			out.Callers = append(out.Callers, id)
			continue
		}
		queries++
		switch {
		case pointsInto(ctx, g, id, scope, model.RelCalls):
			out.Callers = append(out.Callers, id)
		case pointsInto(ctx, g, id, scope, model.RelInherits, model.RelImplements, model.RelOverrides):
			out.Inheritors = append(out.Inheritors, id)
		default:
			out.TypeUsers = append(out.TypeUsers, id)
		}
	}
	return out
}

// pointsInto reports whether id has an outgoing edge of one of types
// landing on another member of scope (target or an affected entity).
func pointsInto(ctx context.Context, g Graph, id string, scope map[string]bool, types ...model.RelationType) bool {
	succs, err := g.Successors(ctx, id, types...)
	if err != nil {
		return false
	}
	for _, s := range succs {
		if scope[s] {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (a *Analyzer) computeFactors(ctx context.Context, target string, direct, indirect, tests []string) (RiskFactors, error) {
	var f RiskFactors

	cyclomatic, cognitive := 0, 0
	if a.Complexity != nil {
		if c, g, ok := a.Complexity(target); ok {
			cyclomatic, cognitive = c, g
		}
	}
	f.Complexity = clamp01((float64(cyclomatic) + float64(cognitive)/2) / 15)

	inDeg, err := a.Graph.InDegree(ctx, target)
	if err != nil {
		return f, fmt.Errorf("impact: in-degree: %w", err)
	}
	outDeg, err := a.Graph.OutDegree(ctx, target)
	if err != nil {
		return f, fmt.Errorf("impact: out-degree: %w", err)
	}
	degreeFallback := clamp01(float64(inDeg+outDeg) / 20)

	centrality, err := a.Graph.BetweennessCentrality(ctx)
	if err != nil || len(centrality) == 0 {
		f.Centrality = degreeFallback
	} else {
		maxC := 0.0
		for _, v := range centrality {
			if v > maxC {
				maxC = v
			}
		}
		if maxC == 0 {
			f.Centrality = degreeFallback
		} else {
			f.Centrality = clamp01(centrality[target] / maxC)
		}
	}

	f.TestCoverage = clamp01(1 - float64(len(tests))*0.3)
	f.Dependency = clamp01(float64(len(direct)+len(indirect)) / 10)

	if a.GitRisk != nil {
		if cf, bf, ok := a.GitRisk(target); ok {
			f.ChangeFrequency = clamp01(cf)
			f.BusFactor = clamp01(bf)
			return f, nil
		}
	}
	f.ChangeFrequency = degreeFallback
	f.BusFactor = 0.5
	return f, nil
}

func (a *Analyzer) overallScore(f RiskFactors) float64 {
	w := a.Weights
	score := f.Complexity*w.Complexity +
		f.Centrality*w.Centrality +
		f.TestCoverage*w.TestCoverage +
		f.Dependency*w.Dependency +
		f.ChangeFrequency*w.ChangeFrequency +
		f.BusFactor*w.BusFactor
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// recommendations emits canned, advisory-only strings per §4.G: each
// factor above its threshold contributes one line; an empty result becomes
// a single "acceptable" message. Stub awareness (§4.G supplement) adds an
// extra line when target or a high-risk affected entity is a detected stub.
func (a *Analyzer) recommendations(target string, f RiskFactors, affected []string) []string {
	var recs []string

	if f.Complexity > 0.7 {
		recs = append(recs, "High complexity: consider refactoring before making changes here.")
	}
	if f.Centrality > 0.6 {
		recs = append(recs, "Highly central node: changes ripple through many call paths; review carefully.")
	}
	if f.TestCoverage > 0.7 {
		recs = append(recs, "Low test coverage on affected code: add tests before changing this.")
	}
	if f.Dependency > 0.6 {
		recs = append(recs, "Large number of dependents: coordinate this change with affected teams.")
	}
	if f.ChangeFrequency > 0.6 {
		recs = append(recs, "Frequently changed recently: elevated regression risk.")
	}
	if f.BusFactor > 0.6 {
		recs = append(recs, "Low bus factor: few people understand this code; pair on the change.")
	}

	if a.Stub != nil {
		if stub, ok := a.Stub(target); ok && stub != nil {
			recs = append(recs, "Target is a detected stub/placeholder: verify it is actually implemented before relying on this assessment.")
		}
		for _, id := range affected {
			if stub, ok := a.Stub(id); ok && stub != nil {
				recs = append(recs, fmt.Sprintf("Affected entity %s is a detected stub/placeholder.", id))
			}
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Risk factors are within acceptable range for this change.")
	}
	return recs
}
