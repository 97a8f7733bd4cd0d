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

// Metrics is the drift-detector's baseline snapshot shape (§4.H).
type Metrics struct {
	Timestamp      string
	CouplingScore  float64
	CohesionScore  float64
	ViolationCount int
	LayerBalance   map[string]float64
	DependencyDepth int
}

// ComputeMetrics derives the drift-baseline metrics (four scalars plus
// the layer-balance map) from one
// validation run plus a per-file layer count.
func ComputeMetrics(rep RepositoryValidationResult, filesPerLayer map[string]int, timestamp string) Metrics {
	total := rep.TotalImports
	coupling := 0.0
	if total > 0 {
		coupling = minFloat(1, (float64(rep.TotalViolations)+float64(rep.TotalWarnings)*0.5)/float64(total))
	}

	balance := make(map[string]float64, len(filesPerLayer))
	if rep.TotalFiles > 0 {
		for layer, count := range filesPerLayer {
			balance[layer] = float64(count) / float64(rep.TotalFiles)
		}
	}

	depth := distinctViolationLayers(rep)

	return Metrics{
		Timestamp:       timestamp,
		CouplingScore:   coupling,
		CohesionScore:   1 - coupling,
		ViolationCount:  rep.TotalViolations,
		LayerBalance:    balance,
		DependencyDepth: depth,
	}
}

func distinctViolationLayers(rep RepositoryValidationResult) int {
	seen := map[string]bool{}
	for _, f := range rep.Files {
		for _, v := range f.Violations {
			if v.FromLayer != "" {
				seen[v.FromLayer] = true
			}
			if v.ToLayer != "" {
				seen[v.ToLayer] = true
			}
		}
	}
	return len(seen)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// DriftWeights are the five fixed weights summing to 1.0 (§4.H).
type DriftWeights struct {
	Coupling   float64
	Cohesion   float64
	Violations float64
	Balance    float64
	Depth      float64
}

// DefaultDriftWeights returns the spec's fixed weights.
func DefaultDriftWeights() DriftWeights {
	return DriftWeights{Coupling: 0.25, Cohesion: 0.20, Violations: 0.30, Balance: 0.15, Depth: 0.10}
}

// DriftIndicators are the per-field deltas between a baseline and current
// snapshot.
type DriftIndicators struct {
	CouplingDelta   float64
	CohesionDelta   float64
	ViolationsDelta float64
	BalanceDelta    float64
	DepthDelta      float64
	Score           float64
}

// ComputeDrift computes per-field deltas and the weighted aggregate drift
// score (§4.H). Violation-count and depth deltas are clipped to [0,10] and
// [0,3] before normalisation, the ranges the spec fixes explicitly so that
// a single enormous violation spike doesn't swamp the other four factors.
func ComputeDrift(baseline, current Metrics, weights DriftWeights) DriftIndicators {
	violDelta := clip(absFloat(float64(current.ViolationCount-baseline.ViolationCount)), 0, 10)
	depthDelta := clip(absFloat(float64(current.DependencyDepth-baseline.DependencyDepth)), 0, 3)

	ind := DriftIndicators{
		CouplingDelta:   absFloat(current.CouplingScore - baseline.CouplingScore),
		CohesionDelta:   absFloat(current.CohesionScore - baseline.CohesionScore),
		ViolationsDelta: violDelta / 10,
		BalanceDelta:    layerBalanceDelta(baseline.LayerBalance, current.LayerBalance),
		DepthDelta:      depthDelta / 3,
	}

	ind.Score = ind.CouplingDelta*weights.Coupling +
		ind.CohesionDelta*weights.Cohesion +
		ind.ViolationsDelta*weights.Violations +
		ind.BalanceDelta*weights.Balance +
		ind.DepthDelta*weights.Depth

	return ind
}

// layerBalanceDelta is the mean absolute difference across the union of
// layer keys present in either snapshot.
func layerBalanceDelta(baseline, current map[string]float64) float64 {
	keys := map[string]bool{}
	for k := range baseline {
		keys[k] = true
	}
	for k := range current {
		keys[k] = true
	}
	if len(keys) == 0 {
		return 0
	}
	sum := 0.0
	for k := range keys {
		sum += absFloat(current[k] - baseline[k])
	}
	return sum / float64(len(keys))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
