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

package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/codeintel/pkg/model"
)

func testLayers() []Layer {
	return []Layer{
		{Name: "domain", Patterns: []string{"internal/domain/*"}},
		{Name: "api", Patterns: []string{"internal/api/*"}, AllowedDependencies: []string{"domain"}},
		{Name: "infra", Patterns: []string{"internal/infra/*"}},
	}
}

func TestClassifier_MatchesGlobPattern(t *testing.T) {
	cl := NewClassifier(testLayers())
	assert.Equal(t, "domain", cl.Classify("internal/domain/order.go"))
	assert.Equal(t, "api", cl.Classify("internal/api/handler.go"))
	assert.Equal(t, "", cl.Classify("cmd/main.go"))
}

func TestClassifier_MemoisesResult(t *testing.T) {
	cl := NewClassifier(testLayers())
	first := cl.Classify("internal/domain/order.go")
	second := cl.Classify("internal/domain/order.go")
	assert.Equal(t, first, second)
	assert.Len(t, cl.cache, 1)
}

func TestEvaluate_SameLayerAlwaysAllowed(t *testing.T) {
	action, _ := Evaluate(nil, testLayers(), false, "domain", "domain")
	assert.Equal(t, ActionAllow, action)
}

func TestEvaluate_ExplicitRuleFirstMatchWins(t *testing.T) {
	rules := []Rule{
		{FromLayer: "api", ToLayer: "infra", Action: ActionBlock, Message: "api must not reach infra directly"},
	}
	action, msg := Evaluate(rules, testLayers(), false, "api", "infra")
	assert.Equal(t, ActionBlock, action)
	assert.Equal(t, "api must not reach infra directly", msg)
}

func TestEvaluate_UnclassifiedEndpointAllowedUnlessStrict(t *testing.T) {
	action, _ := Evaluate(nil, testLayers(), false, "api", "")
	assert.Equal(t, ActionAllow, action)

	action, _ = Evaluate(nil, testLayers(), true, "api", "")
	assert.Equal(t, ActionWarn, action)
}

func TestEvaluate_MissingAllowedDependencyIsBlocked(t *testing.T) {
	action, _ := Evaluate(nil, testLayers(), false, "api", "infra")
	assert.Equal(t, ActionBlock, action)
}

func TestEvaluate_DeclaredDependencyAllowed(t *testing.T) {
	action, _ := Evaluate(nil, testLayers(), false, "api", "domain")
	assert.Equal(t, ActionAllow, action)
}

func TestEvaluate_LayerWithNoAllowedDependenciesListUnrestricted(t *testing.T) {
	// "domain" declares no allowed_dependencies at all, so any target layer
	// without an explicit rule is allowed (§4.H: the ERROR-on-missing-entry
	// rule only fires when the source layer DOES declare the list).
	action, _ := Evaluate(nil, testLayers(), false, "domain", "infra")
	assert.Equal(t, ActionAllow, action)
}

func TestValidateRepository_AggregatesViolations(t *testing.T) {
	cfg := Config{
		Layers: testLayers(),
		Rules:  nil,
		Strict: false,
	}
	cl := NewClassifier(cfg.Layers)
	importsByFile := map[string][]model.ImportEntity{
		"internal/api/handler.go": {{File: "internal/api/handler.go", Module: "internal/infra/db"}},
		"internal/domain/order.go": {{File: "internal/domain/order.go", Module: "internal/api/handler"}},
	}

	rep := ValidateRepository(cfg, cl, importsByFile)
	assert.Equal(t, 2, rep.TotalFiles)
	assert.Equal(t, 2, rep.TotalImports)
	assert.Equal(t, 1, rep.TotalViolations) // api -> infra, blocked
}

func TestValidateRepository_ExcludesTestFiles(t *testing.T) {
	cfg := Config{Layers: testLayers(), ExcludePatterns: DefaultExcludePatterns()}
	cl := NewClassifier(cfg.Layers)
	importsByFile := map[string][]model.ImportEntity{
		"internal/api/handler_test.go": {{File: "internal/api/handler_test.go", Module: "internal/infra/db"}},
	}

	rep := ValidateRepository(cfg, cl, importsByFile)
	assert.Equal(t, 0, rep.TotalFiles)
}

func TestComputeMetrics_CouplingAndCohesionAreComplementary(t *testing.T) {
	rep := RepositoryValidationResult{TotalFiles: 10, TotalImports: 20, TotalViolations: 2, TotalWarnings: 4}
	m := ComputeMetrics(rep, map[string]int{"api": 4, "domain": 6}, "2026-07-30T00:00:00Z")
	assert.InDelta(t, 0.2, m.CouplingScore, 1e-9) // (2 + 4*0.5)/20 = 0.2
	assert.InDelta(t, 0.8, m.CohesionScore, 1e-9)
	assert.InDelta(t, 0.4, m.LayerBalance["api"], 1e-9)
}

func TestComputeDrift_ZeroWhenSnapshotsIdentical(t *testing.T) {
	m := Metrics{CouplingScore: 0.3, CohesionScore: 0.7, ViolationCount: 2, DependencyDepth: 1, LayerBalance: map[string]float64{"api": 0.4}}
	drift := ComputeDrift(m, m, DefaultDriftWeights())
	assert.Equal(t, 0.0, drift.Score)
}

func TestComputeDrift_ViolationSpikeClippedBeforeNormalising(t *testing.T) {
	baseline := Metrics{ViolationCount: 0, LayerBalance: map[string]float64{}}
	current := Metrics{ViolationCount: 100, LayerBalance: map[string]float64{}} // far above the clip ceiling
	drift := ComputeDrift(baseline, current, DefaultDriftWeights())
	assert.Equal(t, 1.0, drift.ViolationsDelta) // clipped to 10, normalised to 10/10
}
