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

package impact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/graphstore"
	"github.com/kraklabs/codeintel/pkg/model"
)

func buildGraph(t *testing.T) *graphstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	g := graphstore.NewMemoryStore()
	// a calls target, b calls a (indirect caller of target), TestThing
	// calls target directly.
	require.NoError(t, g.AddEdge(ctx, graphstore.Edge{Source: "pkg/a.go:a", Target: "pkg/t.go:target", Type: model.RelCalls, Weight: 1.0}))
	require.NoError(t, g.AddEdge(ctx, graphstore.Edge{Source: "pkg/b.go:b", Target: "pkg/a.go:a", Type: model.RelCalls, Weight: 1.0}))
	require.NoError(t, g.AddEdge(ctx, graphstore.Edge{Source: "pkg/t_test.go:TestThing", Target: "pkg/t.go:target", Type: model.RelCalls, Weight: 1.0}))
	return g
}

func TestCalculateBlastRadius_UnknownTargetReturnsZeroAssessment(t *testing.T) {
	ctx := context.Background()
	g := graphstore.NewMemoryStore()
	an := New(g)

	result, err := an.CalculateBlastRadius(ctx, "does/not.go:Exist")
	require.NoError(t, err)
	assert.Equal(t, RiskLow, result.Level)
	assert.Empty(t, result.AllAffected)
}

func TestCalculateBlastRadius_DirectAndIndirectCallers(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)
	an := New(g)

	result, err := an.CalculateBlastRadius(ctx, "pkg/t.go:target")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"pkg/a.go:a", "pkg/t_test.go:TestThing"}, result.DirectCallers)
	assert.ElementsMatch(t, []string{"pkg/b.go:b"}, result.IndirectCallers)
	assert.ElementsMatch(t, []string{"pkg/a.go:a", "pkg/b.go:b", "pkg/t_test.go:TestThing"}, result.AllAffected)
}

func TestCalculateBlastRadius_AffectedTestsMatchGoConvention(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)
	an := New(g)

	result, err := an.CalculateBlastRadius(ctx, "pkg/t.go:target")
	require.NoError(t, err)
	assert.Contains(t, result.AffectedTests, "pkg/t_test.go:TestThing")
}

func TestCalculateBlastRadius_HighComplexityTriggersRecommendation(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)
	an := New(g)
	an.Complexity = func(id string) (int, int, bool) {
		if id == "pkg/t.go:target" {
			return 20, 30, true
		}
		return 0, 0, false
	}

	result, err := an.CalculateBlastRadius(ctx, "pkg/t.go:target")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Factors.Complexity)
	found := false
	for _, r := range result.Recommendations {
		if r == "High complexity: consider refactoring before making changes here." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCalculateBlastRadius_NoRiskYieldsAcceptableMessage(t *testing.T) {
	ctx := context.Background()
	g := graphstore.NewMemoryStore()
	// Four directly-testing callers bring test_coverage_risk to
	// 1 - min(1, 4*0.3) = 0, keeping every factor below its threshold.
	for _, testID := range []string{
		"pkg/fn_test.go:TestOne", "pkg/fn_test.go:TestTwo",
		"pkg/fn_test.go:TestThree", "pkg/fn_test.go:TestFour",
	} {
		require.NoError(t, g.AddEdge(ctx, graphstore.Edge{Source: testID, Target: "lonely.go:fn", Type: model.RelCalls, Weight: 1.0}))
	}
	an := New(g)
	an.GitRisk = func(id string) (float64, float64, bool) { return 0, 0, true }

	result, err := an.CalculateBlastRadius(ctx, "lonely.go:fn")
	require.NoError(t, err)
	assert.Equal(t, []string{"Risk factors are within acceptable range for this change."}, result.Recommendations)
	assert.Equal(t, RiskLow, result.Level)
}

func TestCalculateBlastRadius_StubTargetAddsWarning(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)
	an := New(g)
	an.Stub = func(id string) (*model.StubDetection, bool) {
		if id == "pkg/t.go:target" {
			return &model.StubDetection{Reason: "empty body"}, true
		}
		return nil, false
	}

	result, err := an.CalculateBlastRadius(ctx, "pkg/t.go:target")
	require.NoError(t, err)
	found := false
	for _, r := range result.Recommendations {
		if r == "Target is a detected stub/placeholder: verify it is actually implemented before relying on this assessment." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLevelFor_Buckets(t *testing.T) {
	assert.Equal(t, RiskLow, levelFor(0.1))
	assert.Equal(t, RiskMedium, levelFor(0.3))
	assert.Equal(t, RiskHigh, levelFor(0.6))
	assert.Equal(t, RiskCritical, levelFor(0.9))
}
